package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robopages/robopages"
)

// DefaultCallTimeout bounds a single external-process execution. Wrapped
// tools can run long (scanners, brute forcers), so the default is generous.
const DefaultCallTimeout = 10 * time.Minute

// Swappable for tests that exercise the container fallback.
var lookPath = exec.LookPath

// Dispatcher resolves calls against a book, validates and binds their
// arguments, and runs the resulting command lines. It holds no mutable
// state beyond its configuration, so one Dispatcher may serve concurrent
// batches.
type Dispatcher struct {
	book      *robopages.Book
	runner    Runner
	confirmer Confirmer
	timeout   time.Duration
	workers   int
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRunner replaces the process runner. Tests use this to observe
// commands without spawning anything.
func WithRunner(runner Runner) Option {
	return func(d *Dispatcher) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// WithConfirmer replaces the interactive gate.
func WithConfirmer(confirmer Confirmer) Option {
	return func(d *Dispatcher) {
		if confirmer != nil {
			d.confirmer = confirmer
		}
	}
}

// WithTimeout sets the per-call execution bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithWorkers caps simultaneous process spawns for non-interactive
// batches. One worker keeps dispatch strictly sequential.
func WithWorkers(workers int) Option {
	return func(d *Dispatcher) {
		if workers > 0 {
			d.workers = workers
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New builds a Dispatcher over the given book. Defaults: shell runner,
// terminal confirmer on stdin/stdout, 10 minute timeout, sequential
// dispatch.
func New(book *robopages.Book, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		book:      book,
		runner:    ShellRunner{},
		confirmer: NewTerminalConfirmer(os.Stdin, os.Stdout),
		timeout:   DefaultCallTimeout,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process evaluates an ordered batch of calls and returns one Result per
// call, in input order. Per-call failures are encoded in their Result;
// they never abort the batch. Interactive batches run sequentially so the
// gate presents calls one at a time; non-interactive batches fan out over
// the worker pool when one is configured.
func (d *Dispatcher) Process(ctx context.Context, calls []Call, interactive bool) []Result {
	if !interactive && d.workers > 1 && len(calls) > 1 {
		return d.processParallel(ctx, calls)
	}

	results := make([]Result, len(calls))
	for i, call := range calls {
		results[i] = d.dispatch(ctx, call, interactive)
	}
	return results
}

// dispatch evaluates one call and emits its observation.
func (d *Dispatcher) dispatch(ctx context.Context, call Call, interactive bool) Result {
	start := time.Now()
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	obs := CallObservation{
		CallID:   call.ID,
		Function: call.Function.Name,
	}
	result := d.evaluate(ctx, call, interactive, &obs)
	result.CallID = call.ID
	result.Function = call.Function.Name
	result.ElapsedMS = time.Since(start).Milliseconds()

	obs.Status = result.Status
	obs.ErrorCode = result.Code
	obs.ExitCode = result.ExitCode
	obs.DurationMS = result.ElapsedMS
	emitCallObservation(obs)

	d.logger.Debug("call dispatched",
		"call_id", call.ID,
		"function", call.Function.Name,
		"status", string(result.Status),
		"exit_code", result.ExitCode,
		"elapsed_ms", result.ElapsedMS,
	)
	return result
}

// evaluate walks one call through resolve, validate, bind, confirm and
// execute, short-circuiting into an error or skipped Result at the first
// failing step.
func (d *Dispatcher) evaluate(ctx context.Context, call Call, interactive bool, obs *CallObservation) Result {
	if call.Type != "" && call.Type != "function" {
		return errorResult(newCallError(CodeValidation,
			fmt.Sprintf("unsupported call type %q", call.Type), nil))
	}

	name := call.Function.Name
	fn, page, ok := d.book.Find(name)
	if !ok {
		return errorResult(newCallError(CodeNotFound,
			fmt.Sprintf("function %q not found", name), nil))
	}
	obs.Page = page.Name

	if missing := missingRequired(fn, call.Function.Arguments); len(missing) > 0 {
		return errorResult(newCallError(CodeValidation,
			fmt.Sprintf("function %q: missing required parameters: %s", name, strings.Join(missing, ", ")), nil))
	}

	argv, err := fn.CommandLine(call.Function.Arguments)
	if err != nil {
		return errorResult(newCallError(CodeExecution, "", err))
	}

	argv, dockerized, err := d.resolveBinary(ctx, fn, argv)
	if err != nil {
		return errorResult(newCallError(CodeExecution, "", err))
	}
	obs.Dockerized = dockerized
	command := strings.Join(argv, " ")

	if interactive {
		approved, err := d.confirmer.Confirm(ctx, command, fn.Description)
		if err != nil || !approved {
			return Result{Status: StatusSkipped, Content: NotExecuted}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	output, exitCode, err := d.runner.Run(callCtx, command)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Result{
				Content:  fmt.Sprintf("execution of %q timed out after %s", name, d.timeout),
				Status:   StatusError,
				Code:     CodeTimeout,
				ExitCode: exitCode,
			}
		}
		return errorResult(newCallError(CodeExecution, "", err))
	}

	return Result{Content: output, Status: StatusOK, ExitCode: exitCode}
}

// resolveBinary checks that the command's binary is installed, falling
// back to the function's container when it is not. A leading sudo is
// skipped when locating the binary.
func (d *Dispatcher) resolveBinary(ctx context.Context, fn *robopages.Function, argv []string) ([]string, bool, error) {
	if len(argv) == 0 {
		return nil, false, fmt.Errorf("function %q resolved to an empty command line", fn.Name)
	}

	idx := 0
	if argv[0] == "sudo" && len(argv) > 1 {
		idx = 1
	}

	if _, err := lookPath(argv[idx]); err == nil {
		return argv, false, nil
	}
	if fn.Container == nil {
		return nil, false, fmt.Errorf("binary %q not found in PATH and no container declared", argv[idx])
	}

	image, err := d.ensureImage(ctx, fn.Container)
	if err != nil {
		return nil, false, err
	}
	return dockerize(argv, idx, fn.Container, image), true, nil
}

func missingRequired(fn *robopages.Function, arguments map[string]string) []string {
	var missing []string
	for _, param := range fn.Parameters {
		if !param.Required {
			continue
		}
		if value, ok := arguments[param.Name]; !ok || value == "" {
			missing = append(missing, param.Name)
		}
	}
	return missing
}
