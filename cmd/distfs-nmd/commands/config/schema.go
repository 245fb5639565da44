package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/distfs/distfs/internal/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate a JSON schema for the naming server configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := jsonschema.Reflector{AllowAdditionalProperties: false, DoNotReference: true}
		schema := reflector.Reflect(&config.NamingServerConfig{})
		schema.Version = "https://json-schema.org/draft/2020-12/schema"
		schema.Title = "distfs-nmd configuration"

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("config schema: marshal: %w", err)
		}
		if schemaOutput != "" {
			return os.WriteFile(schemaOutput, out, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "output file (default: stdout)")
}
