package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// amountPrinter formats currency amounts with thousands separators
var amountPrinter = message.NewPrinter(language.English)

// RenderContext carries the values substituted into message templates.
// Keys are the exact, case-sensitive placeholder names accepted inside
// {{...}} tokens.
type RenderContext struct {
	values map[string]string
}

// NewRenderContext builds the substitution context for one proposal and
// one recipient at the given instant.
func NewRenderContext(p *proposal.Proposal, r Recipient, now time.Time) RenderContext {
	return RenderContext{values: map[string]string{
		"proposalTitle":     p.Title,
		"creatorName":       p.CreatorName,
		"assetType":         p.AssetType,
		"recipientName":     r.Name(),
		"timeLeft":          HumanizeTimeLeft(p.Deadline, now),
		"fundingProgress":   p.FundingProgress().StringFixed(1),
		"fundingGoal":       formatAmount(p.FundingGoal),
		"currentFunding":    formatAmount(p.CurrentFunding),
		"minimumInvestment": formatAmount(p.MinimumInvestment),
	}}
}

// Render substitutes every known {{placeholder}} in the input. Unrecognized
// tokens are left verbatim; rendering never fails.
func (c RenderContext) Render(template string) string {
	out := template
	for name, value := range c.values {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

// HumanizeTimeLeft renders the time remaining until a deadline the way the
// platform shows it to investors: days and hours while more than a day
// remains, then hours and minutes, then bare minutes, and a fixed phrase
// once the deadline has passed.
func HumanizeTimeLeft(deadline, now time.Time) string {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return "Deadline passed"
	}

	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%d day(s) %d hour(s)", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%d hour(s) %d minute(s)", hours, minutes)
	}
	return fmt.Sprintf("%d minute(s)", minutes)
}

// formatAmount renders a currency amount with thousands separators. The
// decimal is formatted from its exact digit string; amounts never pass
// through float64.
func formatAmount(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = strings.TrimPrefix(s, "-")
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	out := groupThousands(intPart)
	if neg {
		out = "-" + out
	}
	if fracPart != "" {
		out += "." + fracPart
	}
	return out
}

func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return amountPrinter.Sprintf("%v", number.Decimal(n))
	}
	// Amounts beyond int64 are grouped by hand.
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
