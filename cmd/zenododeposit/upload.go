// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"zenodo-deposit-cli/internal/metadata"
	"zenodo-deposit-cli/internal/zenodo"

	"github.com/spf13/cobra"
)

// newUploadCommand creates the `zenododeposit upload` command.
func newUploadCommand(app *App) *cobra.Command {
	var (
		metadataFile string
		title        string
		description  string
		uploadType   string
		keywords     []string
		vars         []string
		publish      bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Create a deposition and upload files to it",
		Long: `Create a deposition, upload one or more files, and set metadata in a
single run. Files may be local paths or http(s) URLs; remote sources are
streamed through without touching disk.

Metadata comes from a TOML file. Variables referenced in it as ${NAME}
are substituted from --variable flags. --title, --description, --type and
--keyword override or extend the file's values.

Examples:
  zenododeposit upload -m metadata.toml data.csv
  zenododeposit upload -m metadata.toml --publish data.csv codebook.pdf
  zenododeposit upload -m metadata.toml --variable run:42 https://example.org/results.zip
  zenododeposit upload -m metadata.toml --title "Override title" -k climate -k co2 data.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if uploadType != "" && !metadata.IsUploadType(uploadType) {
				return fmt.Errorf("invalid upload type %q: must be one of %s",
					uploadType, strings.Join(metadata.UploadTypes, ", "))
			}
			overrides := metadata.Overrides{
				Title:       title,
				Description: description,
				UploadType:  uploadType,
				Keywords:    metadata.SplitKeywords(keywords),
			}
			return runUpload(cmd, app, args, metadataFile, vars, overrides, publish)
		},
	}

	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "TOML metadata file (required)")
	cmd.Flags().StringVar(&title, "title", "", "override the metadata title")
	cmd.Flags().StringVar(&description, "description", "", "override the metadata description")
	cmd.Flags().StringVar(&uploadType, "type", "", "override the metadata upload type (dataset when neither flag nor file sets one)")
	cmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "keyword to add (repeatable, comma-separated values accepted)")
	cmd.Flags().StringArrayVar(&vars, "variable", nil, "metadata variable as name:value (repeatable)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the deposition after upload")
	_ = cmd.MarkFlagRequired("metadata")

	return cmd
}

// parseVars turns repeated name:value flags into a substitution map.
func parseVars(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, value, found := strings.Cut(entry, ":")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid variable %q: expected name:value", entry)
		}
		vars[name] = value
	}
	return vars, nil
}

func runUpload(cmd *cobra.Command, app *App, paths []string, metadataFile string, rawVars []string, overrides metadata.Overrides, publish bool) error {
	vars, err := parseVars(rawVars)
	if err != nil {
		return err
	}

	md, err := metadata.FromTOML(metadataFile, vars)
	if err != nil {
		return err
	}
	md = overrides.Apply(md)
	if s, _ := md["upload_type"].(string); strings.TrimSpace(s) == "" {
		md["upload_type"] = "dataset"
	}
	if err := metadata.Validate(md); err != nil {
		return err
	}

	dep, err := app.Client().Deposit(cmd.Context(), zenodo.DepositRequest{
		Paths:    paths,
		Metadata: md,
		Publish:  publish,
	})
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}

	verb := "Uploaded"
	if publish {
		verb = "Published"
	}
	fmt.Fprintf(app.stderr, "%s\n", SuccessStyle.Render(fmt.Sprintf("%s deposition %d (%d file(s))", verb, dep.ID, len(paths))))
	return app.printJSON(dep)
}
