package cli

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robopages/robopages"
)

// NewInstallCmd creates the "install" subcommand.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [repo]",
		Short: "Install a collection of pages from a github repository or local archive",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInstall,
	}

	cmd.Flags().StringP("path", "p", "", "Destination path (default: $ROBOPAGES_PATH or ~/.robopages)")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	repo := robopages.DefaultRepo
	if len(args) == 1 {
		repo = args[0]
	}

	dest, err := resolvePagesPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dest); err == nil {
		return exitError(exitValidation, "path %s already exists", dest)
	}

	archive := repo
	if !isLocalArchive(repo) {
		// Allow the github user/repo shorthand.
		if !strings.Contains(repo, "://") {
			repo = "https://github.com/" + repo
		}
		archiveURL := repo + "/archive/refs/heads/main.zip"

		fmt.Fprintf(cmd.OutOrStdout(), "downloading %s ...\n", archiveURL)
		tmp, cleanup, err := downloadArchive(cmd.Context(), archiveURL)
		if err != nil {
			return exitError(exitRuntime, "downloading %s: %v", archiveURL, err)
		}
		defer cleanup()
		archive = tmp
	}

	fmt.Fprintf(cmd.OutOrStdout(), "extracting to %s ...\n", dest)
	if err := extractArchive(archive, dest); err != nil {
		return exitError(exitRuntime, "extracting %s: %v", archive, err)
	}

	return nil
}

func isLocalArchive(repo string) bool {
	if !strings.HasSuffix(repo, ".zip") {
		return false
	}
	_, err := os.Stat(repo)
	return err == nil
}

func downloadArchive(ctx context.Context, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "robopages-*.zip")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

// extractArchive unpacks a zip file into dest, stripping the single top
// level directory github archives wrap their contents in.
func extractArchive(archive, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer reader.Close()

	strip := commonTopLevel(reader.File)
	root := filepath.Clean(dest)

	for _, file := range reader.File {
		name := strings.TrimPrefix(file.Name, strip)
		if name == "" {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", file.Name, dest)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

// commonTopLevel returns the "dir/" prefix shared by every entry of the
// archive, or "" when entries do not sit under a single directory.
func commonTopLevel(files []*zip.File) string {
	prefix := ""
	for _, file := range files {
		idx := strings.Index(file.Name, "/")
		if idx < 0 {
			return ""
		}
		top := file.Name[:idx+1]
		if prefix == "" {
			prefix = top
		} else if top != prefix {
			return ""
		}
	}
	return prefix
}

func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	// #nosec G304 -- target is joined and checked against dest above.
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}

	// #nosec G110 -- page archives are small curated collections.
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
