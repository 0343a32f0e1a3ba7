package commands

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/financas-app/statement-parser/internal/logger"
	"github.com/financas-app/statement-parser/internal/models"
	"github.com/financas-app/statement-parser/internal/ocr"
	"github.com/financas-app/statement-parser/internal/parser"
)

func newParseCommand() *cobra.Command {
	var (
		ocrEndpoint string
		ocrKey      string
	)

	cmd := &cobra.Command{
		Use:   "parse <statement-file>",
		Short: "Parse a statement file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			log := logger.New()

			var ocrClient *ocr.Client
			if ocrEndpoint != "" {
				ocrClient = ocr.NewClient(ocrEndpoint, ocrKey, 0, log)
			}

			file := models.StatementFile{
				Name:      filepath.Base(path),
				MediaType: mime.TypeByExtension(filepath.Ext(path)),
				Data:      data,
			}

			result := parser.Default(log, ocrClient).Parse(cmd.Context(), file)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !result.Success {
				return fmt.Errorf("parsing failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ocrEndpoint, "ocr-endpoint", "", "Recognition service URL (enables the OCR strategy)")
	cmd.Flags().StringVar(&ocrKey, "ocr-key", "", "Recognition service API key")

	return cmd
}
