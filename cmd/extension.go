package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/etnz/fxgains/config"
	"github.com/etnz/fxgains/logger"
)

// RunExtension attempts to find and execute an external fxg-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// Global flags are passed as environment variables, so that extensions load
// the same configuration.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "fxg-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		logger.L.Debug("extension not found", "name", name, "error", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the global flags set on the command line as environment variables.
func extensionEnv() []string {
	env := []string{config.EnvConfig + "=" + *configPath}
	if *database != "" {
		env = append(env, config.EnvDatabase+"="+*database)
	}
	if *logLevel != "" {
		env = append(env, config.EnvLogLevel+"="+*logLevel)
	}
	return env
}
