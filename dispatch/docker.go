package dispatch

import (
	"context"
	"fmt"
	"os"

	"github.com/robopages/robopages"
)

// ensureImage makes the container's image available locally, pulling or
// building it through the runner, and returns the image name to run.
func (d *Dispatcher) ensureImage(ctx context.Context, container *robopages.Container) (string, error) {
	switch {
	case container.Image != "":
		pull := fmt.Sprintf("docker images -q '%s' | grep -q . || docker pull '%s'",
			container.Image, container.Image)
		if _, code, err := d.runner.Run(ctx, pull); err != nil {
			return "", fmt.Errorf("pulling image %s: %w", container.Image, err)
		} else if code != 0 {
			return "", fmt.Errorf("pulling image %s: exit code %d", container.Image, code)
		}
		return container.Image, nil

	case container.Build != "":
		if container.Name == "" {
			return "", fmt.Errorf("container build %q needs a name to tag the image", container.Build)
		}
		build := fmt.Sprintf("docker build -t '%s' '%s'", container.Name, container.Build)
		if _, code, err := d.runner.Run(ctx, build); err != nil {
			return "", fmt.Errorf("building image %s: %w", container.Name, err)
		} else if code != 0 {
			return "", fmt.Errorf("building image %s: exit code %d", container.Name, code)
		}
		return container.Name, nil

	default:
		return "", fmt.Errorf("container declares neither image nor build")
	}
}

// dockerize rewrites argv so the binary at idx runs inside the container
// image instead of on the host. Words before idx (a sudo prefix) are
// dropped: the docker daemon already runs privileged.
func dockerize(argv []string, idx int, container *robopages.Container, image string) []string {
	out := make([]string, 0, len(argv)+6+2*len(container.Volumes)+len(container.Args))
	out = append(out, "docker", "run", "--rm")
	for _, volume := range container.Volumes {
		out = append(out, "-v", os.ExpandEnv(volume))
	}
	out = append(out, container.Args...)
	out = append(out, image)
	out = append(out, argv[idx+1:]...)
	return out
}
