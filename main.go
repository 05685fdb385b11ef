package main

import (
	"bufio"
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"talkd/config"
	"talkd/db"
	"talkd/logger"
	"talkd/server"
	"talkd/service"
)

const controlSocketPath = "/tmp/talkd.sock"

func main() {
	cfg, err := config.Load(os.Getenv("TALKD_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	var audit logger.Audit
	fileAudit, err := logger.NewFileAudit(cfg.AuditLogPath)
	if err != nil {
		log.Printf("Audit log unavailable (%v), continuing without it", err)
		audit = logger.Nop{}
	} else {
		defer fileAudit.Close()
		audit = fileAudit
	}

	writeTimeout := time.Duration(cfg.WriteTimeout) * time.Second
	registry := server.NewRegistry(writeTimeout)

	auth := service.NewAuth(database, audit)
	chats := service.NewChats(database, audit)
	messages := service.NewMessages(database, registry, audit)

	srv := server.New(auth, chats, messages, registry, &server.Config{
		Port:         cfg.Port,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: writeTimeout,
	}, audit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx)
	})

	g.Go(func() error {
		startControlSocket(ctx, srv, cancel)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// startControlSocket serves management commands on a unix socket:
// "stats" reports connection statistics, "shutdown" stops the server.
func startControlSocket(ctx context.Context, srv *server.Server, cancel context.CancelFunc) {
	os.Remove(controlSocketPath)

	listener, err := net.Listen("unix", controlSocketPath)
	if err != nil {
		log.Printf("Failed to create control socket: %v", err)
		return
	}
	defer listener.Close()
	defer os.Remove(controlSocketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	log.Printf("Control socket listening on %s", controlSocketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		go handleControlCommand(srv, conn, cancel)
	}
}

func handleControlCommand(srv *server.Server, conn net.Conn, cancel context.CancelFunc) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}

	switch strings.TrimSpace(line) {
	case "stats":
		conn.Write([]byte("OK|" + srv.GetStats() + "\n"))

	case "shutdown":
		conn.Write([]byte("OK|Shutting down\n"))
		log.Printf("Shutdown requested via control socket")
		cancel()

	default:
		conn.Write([]byte("ERROR|Unknown command\n"))
	}
}
