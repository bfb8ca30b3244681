// Package gateway contains the payment operator collaborators. Production
// operator integrations live outside this engine; Sandbox accepts every
// well-formed request so the collection flow can run end to end, with the
// result delivered later through the signed callback endpoint.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Sandbox implements ports.PaymentGateway.
type Sandbox struct {
	log zerolog.Logger
}

func NewSandbox(log zerolog.Logger) *Sandbox {
	return &Sandbox{log: log}
}

func (g *Sandbox) RequestCollection(ctx context.Context, req ports.GatewayCollection) (*ports.GatewayAck, error) {
	switch req.Operator {
	case domain.PaymentMethodMpesa, domain.PaymentMethodOrangeMoney, domain.PaymentMethodAirtelMoney:
		phone, err := NormalizePhone(req.CustomerPhone)
		if err != nil {
			return nil, err
		}
		req.CustomerPhone = phone
	case domain.PaymentMethodBankTransfer:
	default:
		return nil, fmt.Errorf("gateway: operator %q does not collect", req.Operator)
	}

	ack := &ports.GatewayAck{ExternalRef: strings.ToUpper(string(req.Operator)) + "-" + ulid.Make().String()}
	g.log.Info().
		Str("transaction_ref", req.TransactionRef).
		Str("operator", string(req.Operator)).
		Str("external_ref", ack.ExternalRef).
		Msg("sandbox collection requested")
	return ack, nil
}

// NormalizePhone returns a DRC mobile number in 243XXXXXXXXX form. Local
// numbers starting with 0 get the country code.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case strings.HasPrefix(digits, "243"):
	case strings.HasPrefix(digits, "0"):
		digits = "243" + digits[1:]
	default:
		digits = "243" + digits
	}
	if len(digits) != 12 {
		return "", fmt.Errorf("gateway: invalid phone number %q", phone)
	}
	return digits, nil
}
