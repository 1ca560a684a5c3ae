package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	authService "github.com/allisson/authgate/internal/auth/service"
)

// tokenInspection is the JSON output of RunInspectToken.
type tokenInspection struct {
	ID          string    `json:"id"`
	Issuer      string    `json:"issuer,omitempty"`
	Subject     string    `json:"subject"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RunInspectToken verifies token with the public key only and prints its claims.
// Session state is not consulted, so a revoked token still inspects as valid.
func RunInspectToken(out io.Writer, publicKeyPath, issuer, token, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keys, err := authService.LoadPublicKey(publicKeyPath)
	if err != nil {
		return err
	}

	claims, err := authService.NewTokenCodec(keys, authService.WithIssuer(issuer)).Verify(strings.TrimSpace(token))
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	principal := claims.Principal()
	inspection := tokenInspection{
		ID:          claims.ID,
		Issuer:      claims.Issuer,
		Subject:     principal.Subject,
		Role:        string(principal.Role),
		Permissions: principal.PermissionStrings(),
		IssuedAt:    claims.IssuedAt.UTC(),
		ExpiresAt:   claims.ExpiresAt.UTC(),
	}

	if format == "json" {
		return writeJSON(out, inspection)
	}

	_, _ = fmt.Fprintf(out, "ID:          %s\n", inspection.ID)
	if inspection.Issuer != "" {
		_, _ = fmt.Fprintf(out, "Issuer:      %s\n", inspection.Issuer)
	}
	_, _ = fmt.Fprintf(out, "Subject:     %s\n", inspection.Subject)
	_, _ = fmt.Fprintf(out, "Role:        %s\n", inspection.Role)
	_, _ = fmt.Fprintf(out, "Permissions: %s\n", strings.Join(inspection.Permissions, ", "))
	_, _ = fmt.Fprintf(out, "Issued at:   %s\n", inspection.IssuedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(out, "Expires at:  %s\n", inspection.ExpiresAt.Format(time.RFC3339))
	return nil
}
