// Package advisory turns a simulated trade into a narrative recommendation
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/models"
)

// ErrUnavailable is returned when no generation backend is configured.
var ErrUnavailable = errors.New("advisory unavailable: no API key configured")

// SystemInstruction is sent with every advisory prompt.
const SystemInstruction = "Você é um consultor financeiro direto e objetivo, especialista no mercado de milhas aéreas."

// Service implements AdvisoryService
type Service struct {
	client interfaces.GeminiClient
	logger *common.Logger
}

// NewService creates a new advisory service. client may be nil, in which
// case Advise returns ErrUnavailable.
func NewService(client interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Available reports whether a generation backend is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// Advise builds the prompt and returns the generated text unchanged.
// Upstream failures are returned to the caller.
func (s *Service) Advise(ctx context.Context, req models.AdvisoryRequest) (*models.AdvisoryResponse, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}

	prompt := BuildPrompt(req)
	text, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("program", req.Scenario.Program).Msg("Advisory generation failed")
		return nil, fmt.Errorf("advisory generation failed: %w", err)
	}

	s.logger.Info().Str("program", req.Scenario.Program).Str("model", s.client.Model()).Int("chars", len(text)).Msg("Advisory generated")
	return &models.AdvisoryResponse{Text: text, Model: s.client.Model()}, nil
}

// BuildPrompt renders the operation, its metrics, the market reference and
// an optional portfolio aggregate into the advisory prompt.
func BuildPrompt(req models.AdvisoryRequest) string {
	sc := req.Scenario
	m := req.Metrics
	market, _ := req.Market.Price(sc.Program)

	var sb strings.Builder
	sb.WriteString("Analise esta operação de milhas aéreas:\n\n")
	fmt.Fprintf(&sb, "OPERAÇÃO: Compra de %s pontos no programa %s.\n", m.TotalPoints.StringFixed(0), sc.Program)
	fmt.Fprintf(&sb, "INVESTIMENTO: R$ %s (CPM: R$ %s).\n", sc.Investment.StringFixed(2), m.CPM.StringFixed(2))
	fmt.Fprintf(&sb, "VENDA ESPERADA: R$ %s (Lucro: R$ %s, ROI: %s%%).\n",
		sc.SalePrice.StringFixed(2), m.Profit.StringFixed(2), m.ROI.StringFixed(1))
	fmt.Fprintf(&sb, "MERCADO: Preço médio hoje é R$ %.2f.\n", market)

	if p := req.Portfolio; p != nil && p.Operations > 0 {
		fmt.Fprintf(&sb, "CARTEIRA: %d operações, investimento total R$ %.2f, lucro projetado R$ %.2f, ROI médio %.1f%%.\n",
			p.Operations, p.TotalInvestment, p.TotalProfit, p.AverageROI)
	}

	sb.WriteString("\nSua resposta deve ser formatada em HTML simples. Use tags <b> para negrito.\n")
	sb.WriteString("Responda em 3 tópicos curtos:\n")
	sb.WriteString("1. Veredito sobre o Preço de Venda.\n")
	sb.WriteString("2. Análise do Risco vs Retorno.\n")
	sb.WriteString("3. Conclusão Final (Comece com ✅, ⚠️ ou ❌).\n")

	return sb.String()
}

// Ensure Service implements AdvisoryService
var _ interfaces.AdvisoryService = (*Service)(nil)
