package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"
)

// noSignUp rejects the sign-up path of the auth flow. Muting only makes
// sense for an account that already exists.
type noSignUp struct{}

func (noSignUp) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("signing up is not supported, log in with an existing account")
}

func (noSignUp) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

// termAuth asks for the login code and the 2FA password on the terminal
type termAuth struct {
	noSignUp

	phone string
}

func (a termAuth) Phone(ctx context.Context) (string, error) {
	return a.phone, nil
}

func (a termAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Enter the code Telegram sent you: ")
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	return strings.TrimSpace(code), nil
}

func (a termAuth) Password(ctx context.Context) (string, error) {
	fmt.Print("Enter your 2FA password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(password)), nil
}
