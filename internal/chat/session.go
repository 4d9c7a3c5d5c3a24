package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restalytics/restalytics/internal/anomaly"
	"github.com/restalytics/restalytics/internal/metrics"
	"github.com/restalytics/restalytics/internal/models"
	"github.com/restalytics/restalytics/internal/narrative"
	"github.com/restalytics/restalytics/internal/sink"
	"go.uber.org/zap"
)

// OrderSource abstracts where the order log comes from (JSON file or
// Postgres).
type OrderSource interface {
	Load() (*models.OrderLog, error)
}

// Session is one interactive chat run over a fixed order source. Metrics are
// recomputed from the full log on every command; nothing is cached between
// invocations except the last snapshot used as chat context.
type Session struct {
	id        string
	cfg       *models.Config
	source    OrderSource
	evaluator *anomaly.Evaluator
	generator *narrative.Generator
	router    *narrative.IntentRouter
	snapshots sink.MetricsSink
	topic     string
	logger    *zap.Logger
	in        io.Reader
	out       io.Writer

	lastMetrics *models.AggregatedMetrics
}

type Option func(*Session)

func WithGenerator(g *narrative.Generator) Option {
	return func(s *Session) {
		s.generator = g
		s.router = narrative.NewIntentRouter(g)
	}
}

func WithSnapshotSink(sk sink.MetricsSink) Option {
	return func(s *Session) { s.snapshots = sk }
}

func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Session) {
		s.in = in
		s.out = out
	}
}

func NewSession(cfg *models.Config, source OrderSource, logger *zap.Logger, opts ...Option) *Session {
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = "metrics_snapshots"
	}
	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		source:    source,
		evaluator: anomaly.NewEvaluator(cfg.PrepRegressionFactor, cfg.ProductSalesFloor),
		topic:     topic,
		logger:    logger,
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) computeMetrics() (models.AggregatedMetrics, error) {
	log, err := s.source.Load()
	if err != nil {
		return models.AggregatedMetrics{}, err
	}
	name := log.Restaurant.Name
	if name == "" {
		name = s.cfg.RestaurantName
	}
	opts := metrics.DefaultOptions()
	opts.TopN = s.cfg.TopProducts
	opts.WindowDays = s.cfg.RollingWindowDays
	m := metrics.Compute(log.Orders, name, time.Now(), opts)

	if m.Skipped.Total() > 0 {
		s.logger.Info("orders skipped during aggregation",
			zap.Int("missing_fields", m.Skipped.MissingFields),
			zap.Int("bad_order_date", m.Skipped.BadOrderDate),
			zap.Int("missing_prep_time", m.Skipped.MissingPrepTime),
			zap.Int("negative_prep", m.Skipped.NegativePrep))
	}

	s.lastMetrics = &m
	s.publishSnapshot(m)
	return m, nil
}

func (s *Session) publishSnapshot(m models.AggregatedMetrics) {
	if s.snapshots == nil {
		return
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := s.snapshots.WriteSnapshot(s.topic, payload); err != nil {
		s.logger.Warn("failed to publish metrics snapshot", zap.Error(err))
	}
}

// Run reads commands until /exit or EOF.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("chat session started", zap.String("session_id", s.id))
	s.printf("Digite mensagens para o agente. Comandos disponíveis: /metrics, /clients_metrics, /anomalies, /report, /clear, /exit\n")

	scanner := bufio.NewScanner(s.in)
	for {
		s.printf("\nVocê: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := s.handle(ctx, line); quit {
			break
		}
	}
	return scanner.Err()
}

func (s *Session) handle(ctx context.Context, line string) bool {
	switch strings.ToLower(line) {
	case "/exit", ":q", "sair":
		s.printf("Tchau!\n")
		return true
	case "/clear":
		s.lastMetrics = nil
		s.printf("Conversa limpa.\n")
	case "/metrics":
		s.showMetrics()
	case "/clients_metrics":
		s.showClientMetrics()
	case "/anomalies":
		s.showAnomalies(ctx)
	case "/report":
		s.generateReport(ctx)
	default:
		s.freeForm(ctx, line)
	}
	return false
}

func (s *Session) showMetrics() {
	m, err := s.computeMetrics()
	if err != nil {
		s.printf("Não foi possível calcular as métricas: %v\n", err)
		return
	}
	s.printf("Restaurante: %s\n", m.RestaurantName)
	s.printf("Valor total vendido: R$ %.2f\n", m.GrandTotalSold)
	s.printf("Tempo de preparo — hoje: %ds | últimos 30 dias: %ds | geral: %ds\n",
		m.AvgPrepTodaySeconds, m.AvgPrep30dSeconds, m.AvgPrepSeconds)
	for _, p := range m.TopProducts {
		s.printf("  %s: %d vendidos\n", p.Name, p.Sold)
	}
}

func (s *Session) showClientMetrics() {
	m, err := s.computeMetrics()
	if err != nil {
		s.printf("Não foi possível calcular as métricas: %v\n", err)
		return
	}
	if len(m.Customers) == 0 {
		s.printf("Nenhuma métrica de cliente encontrada.\n")
		return
	}

	names := make([]string, 0, len(m.Customers))
	for name := range m.Customers {
		names = append(names, name)
	}
	sort.Strings(names)

	s.printf("Cliente | Nº de Pedidos | Total Gasto (R$)\n")
	for _, name := range names {
		stats := m.Customers[name]
		s.printf("%s | %d | R$ %.2f\n", name, stats.OrderCount, stats.TotalSpent)
	}
}

func (s *Session) showAnomalies(ctx context.Context) {
	m, err := s.computeMetrics()
	if err != nil {
		s.printf("Não foi possível calcular as métricas: %v\n", err)
		return
	}

	alerts := s.evaluator.Evaluate(m)
	if len(alerts) == 0 {
		s.printf("Nenhuma anomalia encontrada. Tudo dentro do esperado.\n")
	} else {
		for _, alert := range alerts {
			s.printf("- %s\n", alert)
		}
	}

	if s.generator != nil {
		narration, err := s.generator.NarrateAnomalies(ctx, m)
		if err != nil {
			s.logger.Warn("anomaly narration failed", zap.Error(err))
			return
		}
		s.printf("\nAnálise da IA:\n%s\n", narration)
	}
}

func (s *Session) generateReport(ctx context.Context) {
	m, err := s.computeMetrics()
	if err != nil {
		s.printf("Não foi possível calcular as métricas: %v\n", err)
		return
	}
	alerts := s.evaluator.Evaluate(m)

	if s.generator == nil {
		s.printf("Geração de relatório requer um modelo configurado (GEMINI_API_KEY).\n")
		return
	}

	report, raw, err := s.generator.GenerateReport(ctx, m, alerts)
	var rendered string
	if err != nil {
		s.logger.Warn("report generation fell back to raw model output", zap.Error(err))
		rendered = fmt.Sprintf("**Ocorreu um erro ao formatar o relatório. Resposta do modelo:**\n\n%s\n", raw)
	} else {
		rendered = renderReportMarkdown(report)
	}

	s.printf("%s", rendered)

	path, err := s.saveReport(rendered)
	if err != nil {
		s.logger.Warn("failed to save report", zap.Error(err))
		return
	}
	s.printf("\nRelatório salvo em: %s\n", path)
}

func renderReportMarkdown(report *narrative.Report) string {
	var b strings.Builder
	title := report.Title
	if title == "" {
		title = "Relatório de Performance"
	}
	fmt.Fprintf(&b, "### 📄 %s\n\n", title)
	fmt.Fprintf(&b, "**Resumo:** %s\n\n", report.Summary)
	if len(report.Alerts) > 0 {
		b.WriteString("**Alertas:**\n")
		for _, alert := range report.Alerts {
			fmt.Fprintf(&b, "- %s\n", alert)
		}
		b.WriteString("\n")
	}
	b.WriteString("**Recomendações:**\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	return b.String()
}

func (s *Session) saveReport(rendered string) (string, error) {
	if err := os.MkdirAll(s.cfg.ReportsDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("report_%s.md", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.cfg.ReportsDir, name)
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Session) freeForm(ctx context.Context, line string) {
	if s.generator == nil {
		s.printf("Comando não reconhecido. Use /metrics, /clients_metrics, /anomalies ou /report.\n")
		return
	}

	if s.router != nil {
		switch intent := s.router.Route(ctx, line); intent.Function {
		case "query_metrics":
			s.showMetrics()
			return
		case "query_clients_metrics":
			s.showClientMetrics()
			return
		case "detect_anomalies":
			s.showAnomalies(ctx)
			return
		case "generate_report":
			s.generateReport(ctx)
			return
		}
	}

	m := s.lastMetrics
	if m == nil {
		computed, err := s.computeMetrics()
		if err != nil {
			s.printf("Não foi possível calcular as métricas: %v\n", err)
			return
		}
		m = &computed
	}

	prompt := fmt.Sprintf(`Contexto para responder a pergunta:
- Desempenho de hoje (tempo de preparo): %d segundos.
- Desempenho geral (tempo de preparo): %d segundos.
- Total vendido no geral: R$ %.2f.

Pergunta do usuário: %s`,
		m.AvgPrepTodaySeconds, m.AvgPrepSeconds, m.GrandTotalSold, line)

	response, err := s.generator.Chat(ctx, prompt)
	if err != nil {
		s.printf("O modelo não respondeu: %v\n", err)
		return
	}
	s.printf("Agente: %s\n", response)
}
