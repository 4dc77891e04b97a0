package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"trade_relay/pkg/logger"
)

// State — состояние логина мессенджер-сессии. Владеет им только Session,
// остальные компоненты видят лишь итог Login.
type State int32

const (
	Unauthenticated State = iota
	CodeRequested
	AwaitingOtp
	Authenticated
	PermanentlyFailed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case CodeRequested:
		return "code_requested"
	case AwaitingOtp:
		return "awaiting_otp"
	case Authenticated:
		return "authenticated"
	case PermanentlyFailed:
		return "permanently_failed"
	}
	return "unknown"
}

var (
	// Ошибки логина. Любая из них фатальна для попытки: повторного
	// запроса кода и повторного логина в рамках процесса нет.
	ErrRateLimited    = errors.New("code request rate limited")
	ErrInvalidCode    = errors.New("invalid otp code")
	ErrPasswordNeeded = errors.New("2fa password required, not supported")
	ErrNoCode         = errors.New("otp never received")

	// Ошибки приёма OTP через внешний канал.
	ErrNotAwaiting = errors.New("not awaiting otp")
	ErrOtpPending  = errors.New("previous otp not yet consumed")
)

// Gateway — узкий интерфейс к провайдеру мессенджера (транспорт его реализует).
type Gateway interface {
	IsAuthorized(ctx context.Context) (bool, error)
	// SendCodeRequest просит провайдера доставить OTP внешним каналом.
	// При rate limit возвращает ошибку, оборачивающую ErrRateLimited.
	SendCodeRequest(ctx context.Context) error
	// SignIn обменивает OTP на авторизацию; ErrInvalidCode / ErrPasswordNeeded
	// в обёртке при соответствующих отказах провайдера.
	SignIn(ctx context.Context, code string) error
}

// Session — конечный автомат логина. Login вызывается один раз за
// жизнь процесса; OTP приходит конкурентно через SubmitOTP.
type Session struct {
	gw Gateway

	mu            sync.Mutex
	state         State
	codeRequested bool // максимум один запрос кода за процесс

	// Одноместный почтовый ящик: буфер 1, так что пробуждение
	// идемпотентно — ждущий увидит значение на следующей проверке.
	otp chan string
}

func NewSession(gw Gateway) *Session {
	return &Session{
		gw:  gw,
		otp: make(chan string, 1),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SubmitOTP принимает код из внешнего канала доставки.
// Принимается только в AwaitingOtp; второй код до того, как первый
// потреблён, отклоняется (ErrOtpPending), а не перезаписывается.
func (s *Session) SubmitOTP(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != AwaitingOtp {
		return errors.Wrapf(ErrNotAwaiting, "state=%s", s.state)
	}
	select {
	case s.otp <- code:
		return nil
	default:
		return ErrOtpPending
	}
}

// Login доводит сессию до Authenticated либо PermanentlyFailed.
// Блокируется в AwaitingOtp до SubmitOTP или отмены контекста.
func (s *Session) Login(ctx context.Context) error {
	authorized, err := s.gw.IsAuthorized(ctx)
	if err != nil {
		s.setState(PermanentlyFailed)
		return errors.Wrap(err, "authorization check")
	}
	if authorized {
		logger.Info("messaging session already authorized")
		s.setState(Authenticated)
		return nil
	}

	s.mu.Lock()
	needRequest := !s.codeRequested
	s.codeRequested = true
	s.mu.Unlock()

	if needRequest {
		if err := s.gw.SendCodeRequest(ctx); err != nil {
			s.setState(PermanentlyFailed)
			if errors.Is(err, ErrRateLimited) {
				return err
			}
			return errors.Wrap(err, "code request")
		}
		s.setState(CodeRequested)
		logger.Info("otp request sent, waiting for delivery via /otp")
	}

	s.setState(AwaitingOtp)

	select {
	case <-ctx.Done():
		s.setState(PermanentlyFailed)
		return errors.Wrap(ErrNoCode, ctx.Err().Error())
	case code := <-s.otp:
		if err := s.gw.SignIn(ctx, code); err != nil {
			// Ящик уже пуст (код потреблён) — сброс состоялся.
			s.setState(PermanentlyFailed)
			return errors.Wrap(err, "sign in")
		}
		s.setState(Authenticated)
		logger.Info("messaging session authenticated")
		return nil
	}
}

func (s *Session) setState(v State) {
	s.mu.Lock()
	s.state = v
	s.mu.Unlock()
}
