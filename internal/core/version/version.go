// Package version holds build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/guiyumin/vsub/internal/core/version.Version=1.2.3"
package version

var (
	Version = "0.0.0-dev"
	Commit  = "none"
)
