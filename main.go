package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"atendente/config"
	"atendente/internal/command"
	"atendente/internal/handler"
	"atendente/internal/knowledge"
	"atendente/internal/messagelog"
	"atendente/internal/service"
	"atendente/internal/sessions"
	"atendente/internal/tunnel"
	"atendente/pkg/wasender"
)

var (
	cfg     config.Config
	logger  *zap.Logger
	verbose bool
	port    string
	ngrok   bool
)

var rootCmd = &cobra.Command{
	Use:   "atendente",
	Short: "Atendimento automático com base de conhecimento editável e fallback para IA",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		if verbose || cfg.LogLevel == "debug" {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o servidor HTTP (chat, recados e webhook do WhatsApp)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversa pelo terminal usando o mesmo roteador do servidor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <arquivo>",
	Short: "Copia uma base de conhecimento JSON/YAML para o armazenamento configurado",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "habilita logs de depuração")
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "porta HTTP (padrão: PORT ou 8080)")
	serveCmd.Flags().BoolVar(&ngrok, "ngrok", false, "abre um túnel ngrok e registra o webhook na WaSenderAPI")
	rootCmd.AddCommand(serveCmd, chatCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app reúne as dependências compartilhadas por serve e chat.
type app struct {
	store    *knowledge.Store
	messages *service.MessageService
	closers  []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("erro ao liberar recurso", zap.Error(err))
		}
	}
}

// newApp carrega a base e monta o roteador. Falhas aqui encerram o processo.
func newApp(ctx context.Context) *app {
	repo, closeRepo, err := knowledge.NewRepository(ctx, cfg.KnowledgeBaseURL, logger)
	if err != nil {
		logger.Fatal("erro ao abrir armazenamento da base de conhecimento", zap.Error(err))
	}

	store := knowledge.NewStore(repo, logger)
	if err := store.Load(ctx); err != nil {
		logger.Fatal("erro ao carregar base de conhecimento", zap.String("url", cfg.KnowledgeBaseURL), zap.Error(err))
	}

	generator, err := service.NewGeminiGenerator(ctx, cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		logger.Fatal("erro ao iniciar cliente da IA", zap.Error(err))
	}

	messages := service.NewMessageService(
		store,
		command.NewInterpreter(store, logger),
		generator,
		sessions.New(),
		service.Options{
			ActivationPhrase:   cfg.ActivationPhrase,
			DeactivationPhrase: cfg.DeactivationPhrase,
			LLMTimeout:         cfg.LLMTimeout,
		},
		logger,
	)
	return &app{store: store, messages: messages, closers: []func() error{closeRepo}}
}

func runServe(ctx context.Context) error {
	a := newApp(ctx)
	defer a.Close()

	sink, closeSink, err := messagelog.New(ctx, cfg.MessageLogURL, logger)
	if err != nil {
		return fmt.Errorf("erro ao abrir log de recados: %w", err)
	}
	a.closers = append(a.closers, closeSink)

	listenPort := cfg.Port
	if port != "" {
		listenPort = port
	}

	var sender handler.Sender
	if cfg.WhatsAppEnabled() {
		client := wasender.New(cfg.ApiKey, cfg.WaSenderBaseURL)
		sender = client
		if ngrok {
			_, stopTunnel, err := tunnel.StartNgrok(ctx, listenPort, client, logger)
			if err != nil {
				return fmt.Errorf("erro ao iniciar o ngrok: %w", err)
			}
			a.closers = append(a.closers, stopTunnel)
		}
	} else if ngrok {
		logger.Warn("--ngrok ignorado: API_KEY da WaSenderAPI não configurada")
	}

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:    ":" + listenPort,
		Handler: handler.New(a.messages, sink, sender, logger).Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("servidor iniciado", zap.String("port", listenPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("erro ao iniciar o servidor: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runChat(ctx context.Context) error {
	a := newApp(ctx)
	defer a.Close()

	fmt.Println("Digite sua mensagem (Ctrl+D para sair).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		reply := a.messages.ProcessMessage(ctx, scanner.Text())
		fmt.Println(reply.Text)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func runImport(ctx context.Context, path string) error {
	source, err := knowledge.NewFileRepository(path).Load(ctx)
	if err != nil {
		return err
	}

	repo, closeRepo, err := knowledge.NewRepository(ctx, cfg.KnowledgeBaseURL, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := knowledge.NewStore(repo, logger).Replace(ctx, source); err != nil {
		return err
	}
	logger.Info("base de conhecimento importada",
		zap.String("from", path),
		zap.String("to", cfg.KnowledgeBaseURL),
		zap.Int("groups", len(source.KeywordGroups)))
	return nil
}
