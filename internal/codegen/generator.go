// internal/codegen/generator.go
package codegen

import (
	"fmt"
	"strings"

	"github.com/tradeforge/tradeforge-backend/internal/models"
)

// Generator produces MQL5 source for a strategy description. The real provider
// lives outside this service; the licensing core only consumes its output.
type Generator interface {
	Generate(req GenerateRequest) (string, error)
}

type GenerateRequest struct {
	Type            models.ArtifactType
	Description     string
	StrategyDetails string
}

// TemplateGenerator renders a deterministic MQL5 skeleton. It stands in for
// the hosted LLM provider in development and tests.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Generate(req GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("strategy description is empty")
	}

	var sb strings.Builder
	sb.WriteString("//+------------------------------------------------------------------+\n")
	if req.Type == models.ArtifactTypeIndicator {
		sb.WriteString("//| Custom Indicator                                                 |\n")
	} else {
		sb.WriteString("//| Expert Advisor                                                   |\n")
	}
	sb.WriteString("//+------------------------------------------------------------------+\n")
	sb.WriteString("#property copyright \"TradeForge\"\n")
	sb.WriteString("#property version   \"1.00\"\n\n")
	sb.WriteString("// Strategy: " + sanitize(req.Description) + "\n")
	if req.StrategyDetails != "" {
		sb.WriteString("// Details: " + sanitize(req.StrategyDetails) + "\n")
	}
	sb.WriteString("\ninput double LotSize = 0.1;\ninput int StopLossPips = 50;\ninput int TakeProfitPips = 100;\n\n")
	sb.WriteString("int OnInit()\n  {\n   return(INIT_SUCCEEDED);\n  }\n\n")
	sb.WriteString("void OnDeinit(const int reason)\n  {\n  }\n\n")
	if req.Type == models.ArtifactTypeIndicator {
		sb.WriteString("int OnCalculate(const int rates_total,\n                const int prev_calculated,\n                const datetime &time[],\n                const double &open[],\n                const double &high[],\n                const double &low[],\n                const double &close[],\n                const long &tick_volume[],\n                const long &volume[],\n                const int &spread[])\n  {\n   return(rates_total);\n  }\n")
	} else {
		sb.WriteString("void OnTick()\n  {\n   // trading logic generated from the strategy description\n  }\n")
	}

	return sb.String(), nil
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
