// Package analyzing varre as métricas semanais consolidadas em busca de
// anomalias de dados (vendas zeradas com repasse, saltos de semana a semana,
// gasto de marketing acima das vendas atribuídas). Saída consultiva para
// revisão humana; nunca bloqueia ingestão.
package analyzing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/delivery-recon-api/infrastructure/repository"
	"github.com/vfg2006/delivery-recon-api/internal/domain"
	"github.com/vfg2006/delivery-recon-api/internal/usecases/insighting"
)

var ErrClientNotFound = errors.New("cliente não encontrado")

// Limiares das regras, herdados do comportamento observado em produção
const (
	implausibleRoasThreshold = 20.0
	lowPayoutPercent         = 0.30
	cogsRate                 = 0.30 // custo de mercadoria estimado sobre vendas

	wowDropPercent       = 0.50
	wowDropAbsolute      = 1000.0
	wowIncreasePercent   = 1.00
	wowIncreaseAbsolute  = 2000.0
	defaultLookbackWeeks = 8
)

type Service interface {
	DataQualityReport(clientID string, lookbackWeeks int) (*domain.QualityReport, error)
	DataQualityReportAll(lookbackWeeks int) ([]*domain.QualityReport, error)
}

type service struct {
	clientRepo repository.ClientRepository
	insighter  insighting.Service
	now        func() time.Time
}

func NewService(clientRepo repository.ClientRepository, insighter insighting.Service) Service {
	return &service{
		clientRepo: clientRepo,
		insighter:  insighter,
		now:        time.Now,
	}
}

// DataQualityReport aplica as regras sobre as últimas N semanas do cliente.
// As métricas por plataforma são somadas por (location, semana) antes das
// regras; cada regra é independente e aditiva.
func (s *service) DataQualityReport(clientID string, lookbackWeeks int) (*domain.QualityReport, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", clientID, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	if lookbackWeeks <= 0 {
		lookbackWeeks = defaultLookbackWeeks
	}
	weekStart := s.now().AddDate(0, 0, -7*lookbackWeeks)

	metrics, err := s.insighter.ConsolidatedMetrics(&domain.MetricsFilters{
		ClientID:  clientID,
		WeekStart: &weekStart,
	})
	if err != nil {
		return nil, err
	}

	report := &domain.QualityReport{
		ClientID:    clientID,
		GeneratedAt: s.now(),
		Issues:      make([]domain.QualityIssue, 0),
	}

	byLocation := mergeByLocationWeek(metrics)
	for _, weeks := range byLocation {
		for i, week := range weeks {
			report.Issues = append(report.Issues, weeklyIssues(week)...)
			if i > 0 {
				report.Issues = append(report.Issues, weekOverWeekIssues(weeks[i-1], week)...)
			}
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		if !report.Issues[i].WeekStart.Equal(report.Issues[j].WeekStart) {
			return report.Issues[i].WeekStart.Before(report.Issues[j].WeekStart)
		}
		return report.Issues[i].LocationName < report.Issues[j].LocationName
	})

	return report, nil
}

// DataQualityReportAll gera o relatório de todos os clientes cadastrados,
// um relatório por cliente
func (s *service) DataQualityReportAll(lookbackWeeks int) ([]*domain.QualityReport, error) {
	clients, err := s.clientRepo.ListClients()
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar clientes: %w", err)
	}

	reports := make([]*domain.QualityReport, 0, len(clients))
	for _, client := range clients {
		report, err := s.DataQualityReport(client.ID, lookbackWeeks)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// locationWeek é a soma das plataformas de uma Location em uma semana
type locationWeek struct {
	clientID       string
	locationID     string
	locationName   string
	weekStart      time.Time
	sales          float64
	marketingSpend float64
	marketingSales float64
	netPayout      float64
}

// mergeByLocationWeek soma as plataformas por (location, semana) e devolve,
// por Location, as semanas em ordem cronológica
func mergeByLocationWeek(metrics []*domain.ConsolidatedMetrics) map[string][]*locationWeek {
	type key struct {
		locationID string
		weekStart  time.Time
	}

	merged := make(map[key]*locationWeek)
	for _, m := range metrics {
		k := key{locationID: m.LocationID, weekStart: m.WeekStart}
		week, ok := merged[k]
		if !ok {
			week = &locationWeek{
				clientID:     m.ClientID,
				locationID:   m.LocationID,
				locationName: m.LocationName,
				weekStart:    m.WeekStart,
			}
			merged[k] = week
		}
		week.sales += m.TotalSales
		week.marketingSpend += m.MarketingSpend
		week.marketingSales += m.MarketingSales
		week.netPayout += m.NetPayout
	}

	byLocation := make(map[string][]*locationWeek)
	for _, week := range merged {
		byLocation[week.locationID] = append(byLocation[week.locationID], week)
	}
	for _, weeks := range byLocation {
		sort.Slice(weeks, func(i, j int) bool {
			return weeks[i].weekStart.Before(weeks[j].weekStart)
		})
	}

	return byLocation
}

func (w *locationWeek) issue(code, message string) domain.QualityIssue {
	return domain.QualityIssue{
		ClientID:     w.clientID,
		LocationID:   w.locationID,
		LocationName: w.locationName,
		WeekStart:    w.weekStart,
		Code:         code,
		Message:      message,
	}
}

func weeklyIssues(week *locationWeek) []domain.QualityIssue {
	issues := make([]domain.QualityIssue, 0)

	if week.sales == 0 && week.netPayout > 0 {
		issues = append(issues, week.issue(domain.QualityZeroSalesWithPayout,
			fmt.Sprintf("vendas zeradas com repasse de $%.2f", week.netPayout)))
	}

	if week.marketingSpend > 0 {
		if roas := week.marketingSales / week.marketingSpend; roas > implausibleRoasThreshold {
			issues = append(issues, week.issue(domain.QualityImplausibleRoas,
				fmt.Sprintf("ROAS %.1f acima do plausível, provável artefato de dados", roas)))
		}

		if week.marketingSpend > week.marketingSales {
			issues = append(issues, week.issue(domain.QualitySpendExceedsSales,
				fmt.Sprintf("gasto de marketing $%.2f acima das vendas atribuídas $%.2f",
					week.marketingSpend, week.marketingSales)))
		}
	}

	if week.netPayout-week.sales*cogsRate < 0 {
		issues = append(issues, week.issue(domain.QualityNegativeMargin,
			fmt.Sprintf("repasse de $%.2f abaixo do custo estimado de mercadoria ($%.2f)",
				week.netPayout, week.sales*cogsRate)))
	}

	if week.sales > 0 && week.netPayout/week.sales < lowPayoutPercent {
		issues = append(issues, week.issue(domain.QualityLowPayoutPercent,
			fmt.Sprintf("repasse de %.0f%% das vendas, abaixo de %.0f%%",
				(week.netPayout/week.sales)*100, lowPayoutPercent*100)))
	}

	return issues
}

func weekOverWeekIssues(previous, current *locationWeek) []domain.QualityIssue {
	issues := make([]domain.QualityIssue, 0)

	// Semana sem dados no meio (loja fechada, arquivo não enviado) não é
	// comparação semana a semana
	if current.weekStart.Sub(previous.weekStart) != 7*24*time.Hour {
		return issues
	}

	delta := current.sales - previous.sales

	if previous.sales > 0 && delta < 0 {
		drop := -delta
		if drop/previous.sales > wowDropPercent || drop > wowDropAbsolute {
			issues = append(issues, current.issue(domain.QualityWeekOverWeekDrop,
				fmt.Sprintf("queda de vendas de $%.2f para $%.2f em relação à semana anterior",
					previous.sales, current.sales)))
		}
	}

	// Salto grande demais costuma ser ingestão duplicada
	if previous.sales > 0 && delta > 0 {
		if delta/previous.sales > wowIncreasePercent && delta > wowIncreaseAbsolute {
			issues = append(issues, current.issue(domain.QualityWeekOverWeekIncrease,
				fmt.Sprintf("salto de vendas de $%.2f para $%.2f, possível ingestão duplicada",
					previous.sales, current.sales)))
		}
	}

	return issues
}
