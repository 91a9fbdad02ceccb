package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

// MemberDirectory defines the member persistence the CodeProvider needs.
// This allows the provider to be independent of the storage implementation.
type MemberDirectory interface {
	// MemberByPhone returns nil, nil when no member has the number.
	MemberByPhone(ctx context.Context, phone string) (*models.Member, error)
	CreateMember(ctx context.Context, member *models.Member) error
}

// Messenger delivers a text message to a mobile number.
type Messenger interface {
	Send(ctx context.Context, phone, body string) error
}

// LogMessenger writes messages to the log instead of sending them.
type LogMessenger struct{}

func (LogMessenger) Send(ctx context.Context, phone, body string) error {
	slog.Info("SMS suppressed", "phone", mask(phone), "body", body)
	return nil
}

// CodeProvider issues random one-time codes, stores only their bcrypt
// hashes, and registers members in a MemberDirectory.
type CodeProvider struct {
	directory   MemberDirectory
	messenger   Messenger
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time

	mu     sync.Mutex
	issued map[string]*issuedCode
}

type issuedCode struct {
	hash     []byte
	expires  time.Time
	attempts int
}

var _ Provider = (*CodeProvider)(nil)

// NewCodeProvider creates a provider whose codes live for ttl and allow
// maxAttempts wrong guesses.
func NewCodeProvider(directory MemberDirectory, messenger Messenger, ttl time.Duration, maxAttempts int) *CodeProvider {
	if messenger == nil {
		messenger = LogMessenger{}
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &CodeProvider{
		directory:   directory,
		messenger:   messenger,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
		issued:      make(map[string]*issuedCode),
	}
}

// SendCode generates a code, keeps its hash, and sends the plain code.
func (p *CodeProvider) SendCode(ctx context.Context, phone string) error {
	code, err := randomCode(CodeMaxLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	p.mu.Lock()
	p.issued[phone] = &issuedCode{hash: hash, expires: p.now().Add(p.ttl)}
	p.mu.Unlock()

	body := fmt.Sprintf("Your Kapé kiosk code is %s. It expires in %d minutes.", code, int(p.ttl.Minutes()))
	if err := p.messenger.Send(ctx, phone, body); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	return nil
}

// Verify checks code against the last one sent to phone. A correct code is
// consumed.
func (p *CodeProvider) Verify(ctx context.Context, phone, code string) (Verification, error) {
	p.mu.Lock()
	issued, ok := p.issued[phone]
	if !ok {
		p.mu.Unlock()
		return Verification{}, ErrNoCodeIssued
	}
	if p.now().After(issued.expires) {
		delete(p.issued, phone)
		p.mu.Unlock()
		return Verification{}, ErrCodeExpired
	}
	if err := bcrypt.CompareHashAndPassword(issued.hash, []byte(code)); err != nil {
		issued.attempts++
		if issued.attempts >= p.maxAttempts {
			delete(p.issued, phone)
			p.mu.Unlock()
			return Verification{}, ErrTooManyAttempts
		}
		p.mu.Unlock()
		return Verification{}, ErrCodeRejected
	}
	delete(p.issued, phone)
	p.mu.Unlock()

	member, err := p.directory.MemberByPhone(ctx, phone)
	if err != nil {
		return Verification{}, fmt.Errorf("failed to look up member: %w", err)
	}
	return Verification{Phone: phone, Member: member}, nil
}

// Register creates a member for phone. An existing account is an error.
func (p *CodeProvider) Register(ctx context.Context, phone, displayName string) (*models.Member, error) {
	existing, err := p.directory.MemberByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}
	if existing != nil {
		return nil, ErrMemberExists
	}

	member := &models.Member{
		ID:          uuid.New().String(),
		Phone:       phone,
		DisplayName: displayName,
		CreatedAt:   p.now().Unix(),
	}
	if err := p.directory.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
