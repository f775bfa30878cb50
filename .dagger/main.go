// Binder CI
//
// Package main provides reproducible builds and tests for binder locally and
// in GitHub actions.
package main

import (
	"context"

	"dagger/binder/internal/dagger"
)

// Binder is the CI module for the binder CLI and demo backend
type Binder struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Binder CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Binder {
	return &Binder{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with the sqlite
// headers go-sqlite3 needs, CGO enabled, and the project source mounted.
func (b *Binder) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", b.Source)
}

// Test runs the binder unit tests with ginkgo
//
// +check
func (b *Binder) Test(ctx context.Context) (string, error) {
	return b.goContainer().
		WithExec([]string{"go", "run", "github.com/onsi/ginkgo/v2/ginkgo", "-r", "--race", "--randomize-all"}).
		Stdout(ctx)
}
