package service

import (
	"context"
	"strings"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	tgauth "github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/pkg/errors"

	"trade_relay/internal/auth"
	"trade_relay/internal/modules/config"
	websvc "trade_relay/internal/modules/web/service"
	"trade_relay/pkg/logger"
)

// Service — обёртка MTProto-клиента: реализует auth.Gateway для
// конечного автомата логина и отдаёт тексты сообщений одного
// назначенного отправителя в канал для раннера.
type Service struct {
	cfg    *config.Config
	client *telegram.Client

	botUsername string

	mu       sync.Mutex
	codeHash string

	msgs chan string
}

func NewService(cfg *config.Config, storage session.Storage) *Service {
	s := &Service{
		cfg:         cfg,
		botUsername: strings.TrimPrefix(cfg.Telegram.BotUsername, "@"),
		msgs:        make(chan string, 16),
	}

	d := tg.NewUpdateDispatcher()
	d.OnNewMessage(s.onNewMessage)

	s.client = telegram.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, telegram.Options{
		SessionStorage: storage,
		UpdateHandler:  d,
	})
	return s
}

// Messages — входящие тексты от назначенного бота, в порядке прихода.
func (s *Service) Messages() <-chan string { return s.msgs }

// Run держит соединение с Telegram: внутри сначала доводится логин,
// после него сообщения идут через диспетчер вплоть до отмены контекста.
// Ошибка логина фатальна для диспатча сигналов, но не для процесса.
func (s *Service) Run(ctx context.Context, sess *auth.Session, state *websvc.State) error {
	logger.Info("connecting to telegram...")
	return s.client.Run(ctx, func(ctx context.Context) error {
		if err := sess.Login(ctx); err != nil {
			return errors.Wrap(err, "login")
		}
		state.SetAuthenticated(true)
		logger.Info("telegram client started, listening for messages from @%s", s.botUsername)
		<-ctx.Done()
		return ctx.Err()
	})
}

// --- auth.Gateway ---

func (s *Service) IsAuthorized(ctx context.Context) (bool, error) {
	status, err := s.client.Auth().Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Authorized, nil
}

func (s *Service) SendCodeRequest(ctx context.Context) error {
	sent, err := s.client.Auth().SendCode(ctx, s.cfg.Telegram.PhoneNumber, tgauth.SendCodeOptions{})
	if err != nil {
		if d, ok := tgerr.AsFloodWait(err); ok {
			return errors.Wrapf(auth.ErrRateLimited, "flood wait %s", d)
		}
		return err
	}

	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return errors.Errorf("unexpected sent code type %T", sent)
	}

	s.mu.Lock()
	s.codeHash = code.PhoneCodeHash
	s.mu.Unlock()
	return nil
}

func (s *Service) SignIn(ctx context.Context, code string) error {
	s.mu.Lock()
	hash := s.codeHash
	s.mu.Unlock()

	_, err := s.client.Auth().SignIn(ctx, s.cfg.Telegram.PhoneNumber, code, hash)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tgauth.ErrPasswordAuthNeeded):
		return errors.Wrap(auth.ErrPasswordNeeded, "sign in")
	case tgerr.Is(err, "PHONE_CODE_INVALID"):
		return errors.Wrapf(auth.ErrInvalidCode, "%v", err)
	default:
		return err
	}
}

// onNewMessage пропускает только личные сообщения назначенного бота.
func (s *Service) onNewMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
	m, ok := u.Message.(*tg.Message)
	if !ok || m.Out || m.Message == "" {
		return nil
	}
	peer, ok := m.PeerID.(*tg.PeerUser)
	if !ok {
		return nil
	}
	sender, ok := e.Users[peer.UserID]
	if !ok || !strings.EqualFold(sender.Username, s.botUsername) {
		return nil
	}

	logger.Info("bot message received: %q", m.Message)
	select {
	case s.msgs <- m.Message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
