package auth

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/saireecmpo/portal/internal/common"
)

func TestGenerateTOTPSecret(t *testing.T) {
	t.Parallel()

	secret, uri, err := GenerateTOTPSecret("SaiReeCMPO", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret error: %v", err)
	}
	if secret == "" {
		t.Fatal("expected non-empty secret")
	}
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning URI: %q", uri)
	}
	if !strings.Contains(uri, "SaiReeCMPO") {
		t.Fatalf("issuer missing from URI: %q", uri)
	}
}

func TestVerifyTOTP_AcceptsDriftWindow(t *testing.T) {
	t.Parallel()

	secret, _, err := GenerateTOTPSecret("SaiReeCMPO", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret error: %v", err)
	}

	now := time.Now()
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := GenerateTOTPCode(secret, now.Add(offset))
		if err != nil {
			t.Fatalf("GenerateTOTPCode error: %v", err)
		}
		if !VerifyTOTP(code, secret, now) {
			t.Fatalf("code at offset %v should validate", offset)
		}
	}
}

func TestVerifyTOTP_RejectsOutsideWindow(t *testing.T) {
	t.Parallel()

	secret, _, err := GenerateTOTPSecret("SaiReeCMPO", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret error: %v", err)
	}

	now := time.Now()
	code, err := GenerateTOTPCode(secret, now.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("GenerateTOTPCode error: %v", err)
	}
	if VerifyTOTP(code, secret, now) {
		t.Fatal("five minute old code should not validate")
	}
}

func TestVerifyTOTP_RejectsGarbage(t *testing.T) {
	t.Parallel()

	secret, _, err := GenerateTOTPSecret("SaiReeCMPO", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret error: %v", err)
	}
	if VerifyTOTP("abc123", secret, time.Now()) {
		t.Fatal("non-numeric code should not validate")
	}
	if VerifyTOTP("", secret, time.Now()) {
		t.Fatal("empty code should not validate")
	}
}

func TestGenerateBackupCodes_Format(t *testing.T) {
	t.Parallel()

	codes, err := GenerateBackupCodes(BackupCodeCount)
	if err != nil {
		t.Fatalf("GenerateBackupCodes error: %v", err)
	}
	if len(codes) != BackupCodeCount {
		t.Fatalf("want %d codes, got %d", BackupCodeCount, len(codes))
	}

	format := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for _, code := range codes {
		if !format.MatchString(code) {
			t.Fatalf("code %q is not 8 uppercase hex characters", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q in one batch", code)
		}
		seen[code] = true
	}
}

func TestNormalizeBackupCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeBackupCode(" a1b2c3d4 "); got != "A1B2C3D4" {
		t.Fatalf("want A1B2C3D4, got %q", got)
	}
}

func TestChallengeToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateChallengeToken("acc-1", true, secret, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateChallengeToken error: %v", err)
	}

	accountID, remember, err := ParseChallengeToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseChallengeToken error: %v", err)
	}
	if accountID != "acc-1" || !remember {
		t.Fatalf("claims mismatch: accountID=%q remember=%v", accountID, remember)
	}
}

func TestParseChallengeToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateChallengeToken("acc-1", false, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateChallengeToken error: %v", err)
	}

	_, _, err = ParseChallengeToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseChallengeToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateChallengeToken("acc-1", false, []byte("right"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateChallengeToken error: %v", err)
	}

	_, _, err = ParseChallengeToken(tok, []byte("wrong"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
