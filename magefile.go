//go:build mage

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ServerDir and CLIDir are the two binaries this module ships.
	ServerDir = "cmd/server"
	CLIDir    = "cmd/doclib"
	BuildDir  = "bin"
)

var tools = map[string]string{
	"goimports":     "golang.org/x/tools/cmd/goimports@latest",
	"staticcheck":   "honnef.co/go/tools/cmd/staticcheck@latest",
	"golangci-lint": "github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	"dlv":           "github.com/go-delve/delve/cmd/dlv@latest",
	"govulncheck":   "golang.org/x/vuln/cmd/govulncheck@latest",
}

func run(env []string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
	return cmd.Run()
}

func sh(name string, args ...string) error { return run(nil, name, args...) }

func capture(name string, args ...string) string {
	var buf bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout, cmd.Stderr = &buf, &buf
	_ = cmd.Run()
	return strings.TrimSpace(buf.String())
}

func requireTool(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found; run 'mage deps'", name)
	}
	return nil
}

func binPath(cmdDir string) string {
	name := filepath.Base(cmdDir)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(BuildDir, name)
}

// testArgs returns env and go test args; -race needs cgo, NO_RACE=1 skips it.
func testArgs(extra ...string) ([]string, []string) {
	if os.Getenv("NO_RACE") == "1" {
		return nil, append([]string{"test"}, append(extra, "./...")...)
	}
	return []string{"CGO_ENABLED=1"}, append([]string{"test", "-race"}, append(extra, "./...")...)
}

// Bootstrap downloads modules and installs tooling.
func Bootstrap() error {
	if err := sh("go", "mod", "download", "all"); err != nil {
		return err
	}
	return Deps()
}

// Deps installs linters, the debugger and govulncheck.
func Deps() error {
	for _, pkg := range tools {
		if err := sh("go", "install", pkg); err != nil {
			return err
		}
	}
	return nil
}

// Build compiles the server and the doclib CLI into ./bin.
func Build() error {
	if err := os.MkdirAll(BuildDir, 0o755); err != nil {
		return err
	}
	for _, dir := range []string{ServerDir, CLIDir} {
		if err := sh("go", "build", "-trimpath", "-buildvcs=false", "-ldflags", "-s -w", "-o", binPath(dir), "./"+dir); err != nil {
			return fmt.Errorf("build %s: %w", dir, err)
		}
	}
	return nil
}

// Run starts the HTTP server from source.
func Run() error {
	return sh("go", "run", "./"+ServerDir)
}

// Debug starts the server under a headless delve.
func Debug() error {
	if err := requireTool("dlv"); err != nil {
		return err
	}
	return sh("dlv", "debug", "./"+ServerDir, "--headless", "--listen=:2345", "--api-version=2", "--accept-multiclient")
}

// Smoke builds the CLI and prints its help.
func Smoke() error {
	if err := Build(); err != nil {
		return err
	}
	return sh(binPath(CLIDir), "--help")
}

// Test runs unit tests, with the race detector unless NO_RACE=1.
func Test() error {
	env, args := testArgs()
	return run(env, "go", args...)
}

// Cover writes coverage.out and coverage.html.
func Cover() error {
	env, args := testArgs("-coverprofile=coverage.out")
	if err := run(env, "go", args...); err != nil {
		return err
	}
	return sh("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Vuln checks dependencies for known vulnerabilities.
func Vuln() error {
	if err := requireTool("govulncheck"); err != nil {
		return err
	}
	return sh("govulncheck", "./...")
}

// Lint runs go vet, staticcheck and golangci-lint.
func Lint() error {
	for _, name := range []string{"staticcheck", "golangci-lint"} {
		if err := requireTool(name); err != nil {
			return err
		}
	}
	if err := sh("go", "vet", "./..."); err != nil {
		return err
	}
	if err := sh("staticcheck", "./..."); err != nil {
		return err
	}
	return sh("golangci-lint", "run")
}

// Fmt rewrites sources with gofmt and goimports.
func Fmt() error {
	if err := sh("go", "fmt", "./..."); err != nil {
		return err
	}
	return sh("goimports", "-w", ".")
}

// FmtCheck fails when any file needs formatting.
func FmtCheck() error {
	var problems []string
	if files := capture("gofmt", "-l", "."); files != "" {
		problems = append(problems, "gofmt:\n"+files)
	}
	if files := capture("goimports", "-l", "."); files != "" {
		problems = append(problems, "goimports:\n"+files)
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "\n"))
	}
	return nil
}

// TidyCheck fails when go mod tidy changes go.mod or go.sum.
func TidyCheck() error {
	before := capture("git", "status", "--porcelain", "--", "go.mod", "go.sum")
	if err := sh("go", "mod", "tidy"); err != nil {
		return err
	}
	if after := capture("git", "status", "--porcelain", "--", "go.mod", "go.sum"); after != before {
		return fmt.Errorf("go.mod/go.sum not tidy:\n%s", capture("git", "--no-pager", "diff", "--", "go.mod", "go.sum"))
	}
	return nil
}

// Clean removes binaries, coverage output and local field cache databases.
func Clean() error {
	_ = os.RemoveAll(BuildDir)
	leftovers := []string{"coverage.out", "coverage.html"}
	if dbs, err := filepath.Glob("*.db*"); err == nil {
		leftovers = append(leftovers, dbs...)
	}
	for _, f := range leftovers {
		_ = os.Remove(f)
	}
	return nil
}

// Verify runs every check a change should pass.
func Verify() error {
	for _, step := range []func() error{FmtCheck, TidyCheck, Lint, Vuln, Build, Test} {
		if err := step(); err != nil {
			return err
		}
	}
	fmt.Println("verify: ok")
	return nil
}
