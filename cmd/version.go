package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/pkg/settings"
)

var versionOutput = newOutputFormat("text", "text", "json", "yaml")

type versionData struct {
	Name           string `json:"name" yaml:"name"`
	Version        string `json:"version" yaml:"version"`
	Commit         string `json:"commit" yaml:"commit"`
	BuildTime      string `json:"buildTime" yaml:"buildTime"`
	GoVersion      string `json:"goVersion" yaml:"goVersion"`
	Platform       string `json:"platform" yaml:"platform"`
	CatalogVersion string `json:"catalogVersion" yaml:"catalogVersion"`
}

func buildVersionData() versionData {
	info := settings.VersionInformation
	return versionData{
		Name:           settings.CliBinaryName,
		Version:        info.BuildVersion,
		Commit:         info.Commit,
		BuildTime:      info.BuildTime,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		CatalogVersion: completion.StaticCatalogVersion,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tplx version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVersion(cmd.OutOrStdout(), versionOutput.String())
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	versionCmd.Flags().VarP(versionOutput, "output", "o", "output format: text|json|yaml")
}

func runVersion(w io.Writer, format string) error {
	v := buildVersionData()
	if isStructured(format) {
		return writeStructured(w, v, format)
	}
	_, err := fmt.Fprintf(w, "%s %s (commit %s, %s, %s, catalog %s)\n",
		v.Name, v.Version, v.Commit, v.GoVersion, v.Platform, v.CatalogVersion)
	return err
}
