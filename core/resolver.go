package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/NikBulygin/xlsx2pdf/config"
)

// ParamResolver turns the raw run parameters into the parameter map used
// for substitution.
type ParamResolver interface {
	Resolve(ctx context.Context, raw map[string]any) (ParamMap, error)
}

// StaticResolver uses the raw parameters as they are. It serves runs whose
// data was prepared by the caller.
type StaticResolver struct{}

func (StaticResolver) Resolve(_ context.Context, raw map[string]any) (ParamMap, error) {
	return ParseParamMap(raw)
}

// CommandResolver runs an external extension program. The raw parameters
// are written to its stdin as a JSON object; it must print the resolved
// parameter map as a JSON object on stdout. Table columns keep the order
// the program printed them in.
type CommandResolver struct {
	Path string
	// Interpreter runs Path when set; ".py" files default to python3.
	Interpreter string
	Args        []string

	logger *slog.Logger
}

// NewCommandResolver creates a resolver for the program at path.
func NewCommandResolver(logger *slog.Logger, path, interpreter string) *CommandResolver {
	return &CommandResolver{Path: path, Interpreter: interpreter, logger: logger}
}

func (r *CommandResolver) command() (string, []string) {
	interpreter := r.Interpreter
	if interpreter == "" && strings.EqualFold(filepath.Ext(r.Path), ".py") {
		interpreter = "python3"
	}
	if interpreter == "" {
		return r.Path, r.Args
	}
	return interpreter, append([]string{r.Path}, r.Args...)
}

func (r *CommandResolver) Resolve(ctx context.Context, raw map[string]any) (ParamMap, error) {
	r.logger.Info("Calling extension", "path", r.Path)

	input, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode params for extension %s: %w", r.Path, err)
	}

	name, args := r.command()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		r.logger.Error("Extension failed", "path", r.Path, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("extension %s: %w: %s", r.Path, err, strings.TrimSpace(stderr.String()))
	}

	result, err := config.DecodeJSON(&stdout)
	if err != nil {
		err = fmt.Errorf("%w: extension %s printed no JSON object: %v", ErrInvalidExtensionResult, r.Path, err)
		r.logger.Error("Invalid extension result", "path", r.Path, "error", err)
		return nil, err
	}

	params, err := ParseParamMap(result)
	if err != nil {
		r.logger.Error("Invalid extension result", "path", r.Path, "error", err)
		return nil, fmt.Errorf("extension %s: %w", r.Path, err)
	}
	r.logger.Info("Extension finished", "path", r.Path, "params", len(params))
	return params, nil
}
