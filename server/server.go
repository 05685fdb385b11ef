package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"talkd/logger"
	"talkd/protocol"
	"talkd/service"
)

type Server struct {
	auth     *service.Auth
	chats    *service.Chats
	messages *service.Messages
	registry *Registry
	config   *Config
	audit    logger.Audit
}

type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Session is the per-connection state. A session starts unauthenticated;
// a successful login fills Login/UserID and binds it in the registry.
type Session struct {
	ID     string // короткий id для корреляции строк лога
	Login  string
	UserID int64
	Conn   net.Conn

	writeMu sync.Mutex
}

// write serializes writes to the connection so concurrent pushes never
// interleave with request answers.
func (sess *Session) write(data []byte, timeout time.Duration) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	sess.Conn.SetWriteDeadline(time.Now().Add(timeout))
	_, err := sess.Conn.Write(data)
	return err
}

func New(auth *service.Auth, chats *service.Chats, messages *service.Messages, registry *Registry, config *Config, audit logger.Audit) *Server {
	return &Server{
		auth:     auth,
		chats:    chats,
		messages: messages,
		registry: registry,
		config:   config,
		audit:    audit,
	}
}

// Serve accepts connections until ctx is cancelled, then closes the listener
// and every authenticated session.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.config.Port))
	if err != nil {
		return err
	}

	log.Printf("talkd server started on port %d", s.config.Port)
	s.audit.Log("Server is running")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		listener.Close()
		s.Shutdown()
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				log.Printf("Error accepting connection: %v", err)
				continue
			}

			go s.handleConnection(conn)
		}
	})

	return g.Wait()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	session := &Session{
		ID:   uuid.NewString()[:8],
		Conn: conn,
	}

	remoteAddr := conn.RemoteAddr().String()
	log.Printf("[%s] client connected from %s", session.ID, remoteAddr)

	scanner := protocol.NewScanner()
	buf := make([]byte, 4096)

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		n, err := conn.Read(buf)

		if n > 0 {
			scanner.Append(buf[:n])
			s.drainFrames(session, scanner)
		}

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Таймаут чтения — продолжаем ждать данные
				continue
			}
			if err != io.EOF && !strings.Contains(err.Error(), "use of closed network connection") {
				log.Printf("[%s] read error from %s: %v", session.ID, remoteAddr, err)
			}
			break
		}
	}

	s.registry.Unbind(session)

	if session.Login != "" {
		log.Printf("[%s] client %s disconnected from %s", session.ID, session.Login, remoteAddr)
	} else {
		log.Printf("[%s] client disconnected from %s", session.ID, remoteAddr)
	}
}

// drainFrames dispatches every complete frame buffered so far. Malformed
// bytes answer an error response; the connection stays open.
func (s *Server) drainFrames(session *Session, scanner *protocol.Scanner) {
	for {
		frame, err := scanner.Next()
		if err != nil {
			s.respond(session, protocol.StatusResponse{
				Status:  protocol.StatusError,
				Message: "Invalid JSON format",
			})
			continue
		}
		if frame == nil {
			return
		}
		s.dispatch(session, frame)
	}
}

func (s *Server) dispatch(session *Session, frame []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		s.respond(session, protocol.StatusResponse{
			Status:  protocol.StatusError,
			Message: "Invalid JSON format",
		})
		return
	}

	switch env.Type {
	case protocol.TypeRegister:
		s.handleRegister(session, frame)
	case protocol.TypeLogin:
		s.handleLogin(session, frame)
	case protocol.TypeCheckNickname:
		s.handleCheckNickname(session, frame)
	case protocol.TypeUpdateNickname:
		s.handleUpdateNickname(session, frame)
	case protocol.TypeUpdateLogin:
		s.handleUpdateLogin(session, frame)
	case protocol.TypeUpdatePassword:
		s.handleUpdatePassword(session, frame)
	case protocol.TypeFindUsers:
		s.handleFindUsers(session, frame)
	case protocol.TypeCreateChat:
		s.handleCreateChat(session, frame)
	case protocol.TypeGetOrCreateChat:
		s.handleGetOrCreateChat(session, frame)
	case protocol.TypeCheckChatExists:
		s.handleCheckChatExists(session, frame)
	case protocol.TypeDeleteChat:
		s.handleDeleteChat(session, frame)
	case protocol.TypeGetChatList:
		s.handleGetChatList(session, frame)
	case protocol.TypeGetChatHistory:
		s.handleGetChatHistory(session, frame)
	case protocol.TypeSendMessage:
		s.handleSendMessage(session, frame)
	default:
		s.respond(session, protocol.StatusResponse{
			Status:  protocol.StatusError,
			Message: "Unknown request type",
		})
	}
}

func (s *Server) respond(session *Session, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		log.Printf("[%s] encode error: %v", session.ID, err)
		return
	}

	if err := session.write(data, s.config.WriteTimeout); err != nil {
		log.Printf("[%s] write error: %v", session.ID, err)
	}
}

// Shutdown closes every authenticated session and clears the registry.
func (s *Server) Shutdown() {
	for _, session := range s.registry.Drain() {
		session.Conn.Close()
	}
	s.audit.Log("Server stopped")
}

// GetStats returns server statistics as a formatted string.
func (s *Server) GetStats() string {
	logins := s.registry.Logins()
	return "connections=" + strconv.Itoa(len(logins)) + ",users=" + strings.Join(logins, ";")
}
