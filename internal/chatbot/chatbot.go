package chatbot

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"HealthBuddy/internal/backend"
	"HealthBuddy/internal/cache"
	"HealthBuddy/internal/config"
	"HealthBuddy/internal/directory"
	"HealthBuddy/internal/history"
	"HealthBuddy/internal/orchestrator"
	"HealthBuddy/internal/session"
	"HealthBuddy/internal/telemetry"
	"HealthBuddy/internal/tool"
	"HealthBuddy/internal/translog"
)

// Preamble is the system instruction seeded as transcript[0] of every
// session. The turn-count gate lives here as advisory prompt text; the
// orchestrator is invoked identically regardless of turn count.
const Preamble = "You are HealthBuddy, a professional and empathetic chatbot designed to assist users with health and wellness concerns. " +
	"Engage in natural conversation, asking follow-up questions to understand symptoms or dietary issues. " +
	"For minor issues (e.g., mild tiredness), suggest simple remedies (e.g., rest, hydration) and continue the conversation. " +
	"Do NOT diagnose conditions. Use the 'get_doctor_specialties' tool to know available specialties when needed. " +
	"Only recommend a doctor after ~10 user messages, unless the user explicitly asks for one (e.g., 'I need a nutritionist'). " +
	"When recommending, use the 'get_doctor_details' tool to fetch details for the appropriate specialty (e.g., Nutritionist for dietary concerns). " +
	"For dietary issues (e.g., vegetarian diet, poor eating), consider a Nutritionist. For physical symptoms (e.g., cough, joint pain), consider other specialties. " +
	"Keep responses concise, professional, and supportive, avoiding medical jargon."

// Greeting opens every new session on the display log.
const Greeting = "Hello! I'm here to support you with any health concerns. What's on your mind today?"

// ChatBot is the session driver: it owns the session, invokes the
// orchestrator, renders replies and records them.
type ChatBot struct {
	config  config.Config
	logger  *slog.Logger
	dir     *directory.Directory
	orch    *orchestrator.Orchestrator
	translg *translog.Logger
	store   *history.Store
	session *session.Session
	cache   sync.Map
	mu      sync.Mutex
}

// NewChatBot wires up a chatbot instance. The API key must already be
// verified by the caller; an empty key is a programming error here.
func NewChatBot(cfg config.Config, apiKey string) (*ChatBot, error) {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, _, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	store, err := history.Open("healthbuddy.db", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	dir := directory.Default()
	if cfg.DirectoryPath != "" {
		dir, err = directory.LoadFile(cfg.DirectoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load specialist directory: %w", err)
		}
		logger.Info("loaded specialist directory", "path", cfg.DirectoryPath, "records", dir.Len())
	}

	registry := tool.NewDoctorRegistry(dir)
	client := backend.NewClient(apiKey, logger, tracer, meter)

	cb := &ChatBot{
		config:  cfg,
		logger:  logger,
		dir:     dir,
		orch:    orchestrator.New(client, registry, cfg.Model, logger, tracer),
		translg: translog.New(cfg.LogPath),
		store:   store,
	}

	if cfg.SessionID != "" {
		sess, err := store.Load(cfg.SessionID)
		if err != nil {
			logger.Warn("failed to load session, creating new one", "error", err)
			cb.session = cb.newSession()
		} else {
			cb.session = sess
			logger.Info("loaded existing session", "session_id", sess.ID)
		}
	} else {
		cb.session = cb.newSession()
	}

	return cb, nil
}

// newSession creates a new session
func (cb *ChatBot) newSession() *session.Session {
	sess := session.New(Preamble, Greeting)
	cb.logger.Info("created new session", "session_id", sess.ID)
	return sess
}

// SubmitUserMessage runs one full orchestration cycle for the given user
// text and returns the reply along with the timestamp used in the log entry.
func (cb *ChatBot) SubmitUserMessage(ctx context.Context, text string) (string, string) {
	cb.mu.Lock()
	sess := cb.session
	cb.mu.Unlock()

	sess.AppendUser(text)
	timestamp := time.Now().Format(config.TimestampLayout)

	// Advisory gate: all branches invoke the orchestrator identically. The
	// branch taken is logged for operators but the gating itself is prompt
	// text the model is expected to honor.
	switch {
	case session.HasSpecialistCue(text):
		cb.logger.Debug("specialist cue present", "turn", sess.UserTurns)
	case sess.UserTurns >= config.RecommendationTurnThreshold:
		cb.logger.Debug("turn threshold reached", "turn", sess.UserTurns)
	default:
		cb.logger.Debug("smalltalk turn", "turn", sess.UserTurns)
	}

	var reply string
	key := cache.GenerateKey(sess.Transcript)
	if val, ok := cb.cache.Load(key); ok {
		cached := val.(cache.CachedResponse)
		if cached.Expired() {
			cb.cache.Delete(key)
		} else {
			cb.logger.Info("cache hit", "key", key[:16])
			reply = cached.Response
			sess.AppendAssistant(reply)
		}
	}

	if reply == "" {
		reply = cb.orch.Respond(ctx, sess)
		cb.cache.Store(key, cache.CachedResponse{Response: reply, Timestamp: time.Now()})
	}

	cb.logConversation(text, reply, timestamp)

	// The save runs async, so it works on a snapshot taken under the lock;
	// the next turn is free to grow the live transcript.
	cb.mu.Lock()
	snapshot := sess.Snapshot()
	cb.mu.Unlock()

	go func() {
		if err := cb.store.Save(snapshot); err != nil {
			cb.logger.Error("failed to save session", "error", err)
		}
	}()

	return reply, timestamp
}

// logConversation appends the cycle to the conversation log. A corrupt store
// is reset and the append retried once; logging failures never block the
// reply that was already produced.
func (cb *ChatBot) logConversation(userInput, botResponse, timestamp string) {
	entry := translog.Entry{
		Timestamp:   timestamp,
		UserInput:   userInput,
		BotResponse: botResponse,
	}

	err := cb.translg.Append(entry)
	if err == nil {
		return
	}

	if corrupt, ok := err.(*translog.CorruptError); ok {
		cb.logger.Warn("conversation log corrupt, reinitializing", "error", corrupt)
		if err := cb.translg.Reset(); err != nil {
			cb.logger.Error("failed to reset conversation log", "error", err)
			return
		}
		err = cb.translg.Append(entry)
	}
	if err != nil {
		cb.logger.Error("failed to append conversation log", "error", err)
	}
}

// handleCommand handles special commands
func (cb *ChatBot) handleCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new-session":
		if err := cb.store.Save(cb.session); err != nil {
			cb.logger.Error("failed to save current session", "error", err)
		}
		cb.mu.Lock()
		cb.session = cb.newSession()
		cb.mu.Unlock()
		fmt.Println("Started new session:", cb.session.ID)
		fmt.Printf("Bot: %s\n\n", Greeting)
		return false, nil

	case "/specialties":
		fmt.Println("\nAvailable specialties:")
		for i, s := range cb.dir.ListSpecialties() {
			fmt.Printf("%d. %s\n", i+1, s)
		}
		fmt.Println()
		return false, nil

	case "/history":
		fmt.Println()
		for _, msg := range cb.session.Display {
			switch msg.Role {
			case session.RoleUser:
				fmt.Printf("You: %s\n", msg.Content)
			case session.RoleAssistant:
				fmt.Printf("Bot: %s\n", msg.Content)
			}
		}
		fmt.Println()
		return false, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit   - Exit the chatbot")
		fmt.Println("  /new-session   - Start a new chat session")
		fmt.Println("  /specialties   - List specialties in the doctor directory")
		fmt.Println("  /history       - Show the conversation so far")
		fmt.Println("  /help          - Show this help message")
		return false, nil

	default:
		return false, nil
	}
}

// Run starts the chat bot
func (cb *ChatBot) Run() error {
	defer cb.store.Close()

	fmt.Println("=== HealthBuddy ===")
	fmt.Println("Your trusted companion for health and wellness")
	fmt.Printf("Session: %s\n", cb.session.ID)
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()
	fmt.Printf("Bot: %s\n\n", Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				cb.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		reply, _ := cb.SubmitUserMessage(ctx, input)
		fmt.Printf("Bot: %s\n\n", reply)
	}

	if err := cb.store.Save(cb.session); err != nil {
		cb.logger.Error("failed to save session on exit", "error", err)
		return err
	}

	fmt.Println("Goodbye!")
	return nil
}
