package commands

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/financas-app/statement-parser/internal/api"
	"github.com/financas-app/statement-parser/internal/config"
	"github.com/financas-app/statement-parser/internal/logger"
	"github.com/financas-app/statement-parser/internal/ocr"
	"github.com/financas-app/statement-parser/internal/parser"
)

func newServeCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement ingestion HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log := logger.New()

			var ocrClient *ocr.Client
			if cfg.OCR.Endpoint != "" {
				ocrClient = ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.APIKey, cfg.OCR.Timeout(), log)
			} else {
				log.Info().Msg("no recognition endpoint configured, OCR strategy disabled")
			}

			app := fiber.New(fiber.Config{
				BodyLimit:             int(cfg.Upload.MaxSizeBytes()) + (1 << 20), // multipart overhead
				DisableStartupMessage: true,
			})
			app.Use(recover.New())

			handler := &api.Handler{
				Dispatcher:     parser.Default(log, ocrClient),
				MaxUploadBytes: cfg.Upload.MaxSizeBytes(),
				Log:            log,
			}
			handler.Register(app)

			log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
			return app.Listen(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to statement-parser.yaml")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}
