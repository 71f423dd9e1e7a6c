package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"soundbox/config"
	"soundbox/handlers"
	"soundbox/middleware"
	"soundbox/services"
	"soundbox/types"
	"soundbox/web"
	"soundbox/websocket"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Sound Box web server",
	Long:  `Start the HTTP server that renders the folder picker, streams audio and runs one playback session per widget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		return StartWebServer(cmd.Context(), cfg, log)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port for the web server")
	rootCmd.AddCommand(serveCmd)
}

// Server bundles the router with the long-running services behind it
type Server struct {
	Router  *gin.Engine
	Hub     websocket.Hub
	Library services.Library
	Watcher *services.LibraryWatcher
}

// NewServer wires services, handlers and routes for cfg
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	// Initialize services
	hub := websocket.NewHub(log)
	library := services.NewLibrary(cfg.AudiosPath(), log)
	indexer := services.NewIndexer(library, cfg.Workers, log)

	var watcher *services.LibraryWatcher
	if cfg.Watch {
		watcher = services.NewLibraryWatcher(cfg.AudiosPath(), services.DefaultSettleDelay, func() {
			hub.Broadcast(websocket.TopicLibrary, types.Message{Type: types.MessageTypeLibrary})
		}, log)
	}

	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(library)
	fileHandler := handlers.NewFileHandler(library, indexer, log)
	playerHandler := handlers.NewPlayerHandler(library, hub, log)
	healthHandler := handlers.NewHealthHandler(library, hub)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging(log))
	r.Use(middleware.Security())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))

	setupRoutes(r, cfg, pageHandler, fileHandler, playerHandler, healthHandler)

	return &Server{
		Router:  r,
		Hub:     hub,
		Library: library,
		Watcher: watcher,
	}, nil
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, cfg *config.Config, pageHandler *handlers.PageHandler, fileHandler *handlers.FileHandler, playerHandler *handlers.PlayerHandler, healthHandler *handlers.HealthHandler) {
	r.GET("/health", healthHandler.HealthCheck)

	// Pages
	r.GET("/", pageHandler.Home)
	r.GET("/folder/:name", pageHandler.Folder)

	// Audio streaming and downloads
	r.GET("/audios/*filepath", fileHandler.StreamFile)
	r.HEAD("/audios/*filepath", fileHandler.StreamFile)

	// WebSocket endpoints for widget sessions and library changes
	wsGroup := r.Group("/ws")
	{
		wsGroup.GET("/player", playerHandler.Connect)
		wsGroup.GET("/library", playerHandler.LibraryUpdates)
	}

	// JSON API
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.CORS(cfg.CORSOrigins))
	{
		apiGroup.GET("/folders", fileHandler.ListFolders)
		apiGroup.GET("/folders/:name/files", fileHandler.ListFiles)
	}
}

// Run serves until ctx is done, then shuts the HTTP server down gracefully
func (s *Server) Run(ctx context.Context, addr string, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Hub.Run(ctx)
		return nil
	})

	if s.Watcher != nil {
		g.Go(func() error {
			// a missing library root should not take the pages down with it
			if err := s.Watcher.Run(ctx); err != nil {
				log.Warn("library watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("Sound Box web server starting", zap.String("addr", addr), zap.String("library", s.Library.AudiosPath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// StartWebServer starts the web server and blocks until ctx is done
func StartWebServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	server, err := NewServer(cfg, log)
	if err != nil {
		return err
	}
	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Port), log)
}
