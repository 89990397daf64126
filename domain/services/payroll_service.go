package services

import (
	"context"
	"errors"
	"fmt"

	"incoin/domain/entities"
	"incoin/domain/utils"
	"incoin/events"

	log "github.com/sirupsen/logrus"
)

// PayrollService runs the daily company payroll
type PayrollService struct {
	deps Dependencies
}

// NewPayrollService creates a new payroll service
func NewPayrollService(deps Dependencies) *PayrollService {
	return &PayrollService{deps: deps}
}

// PayrollReport summarizes one settlement pass over a guild
type PayrollReport struct {
	Checked  int
	Paid     []string
	Bankrupt []string
}

// SettleDaily charges maintenance and pays salaries for every company whose
// payout is due. Insolvent companies are dissolved without a partial payout.
// A failing company is logged and skipped.
func (s *PayrollService) SettleDaily(ctx context.Context) (*PayrollReport, error) {
	companies, err := s.deps.Store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	report := &PayrollReport{Checked: len(companies)}
	var errs []error
	for _, c := range companies {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if !c.IsPayoutDue(s.deps.now()) {
			continue
		}

		bankrupt, settled, err := s.settleCompany(ctx, c.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id":   s.deps.Store.GuildID(),
				"company_id": c.ID,
				"error":      err,
			}).Error("Failed to settle company payroll")
			errs = append(errs, err)
			continue
		}
		switch {
		case bankrupt:
			report.Bankrupt = append(report.Bankrupt, c.ID)
		case settled:
			report.Paid = append(report.Paid, c.ID)
		}
	}

	return report, errors.Join(errs...)
}

func (s *PayrollService) settleCompany(ctx context.Context, companyID string) (bankrupt, settled bool, err error) {
	company, unlock := s.deps.lockCompanyMembers(ctx, companyID)
	defer unlock()

	now := s.deps.now()
	if company == nil || !company.IsPayoutDue(now) {
		return false, false, nil
	}

	fee := company.MaintenanceFee()
	payroll := company.PayrollTotal()

	log.WithFields(log.Fields{
		"guild_id":        company.GuildID,
		"company_id":      company.ID,
		"daily_salary":    company.DailySalary,
		"members":         len(company.Members),
		"maintenance_fee": fee,
		"budget":          company.Budget,
	}).Info("Settling company payroll")

	if company.Budget < fee+payroll {
		return true, false, s.bankrupt(ctx, company, fee, payroll)
	}

	company.Budget -= fee
	evs := make([]events.Event, 0, len(company.Members)+1)
	for _, m := range company.Members {
		member := s.deps.Store.User(ctx, m.ID)
		walletBefore, bankBefore := member.Balance, member.BankBalance
		member.AddBalance(company.DailySalary)
		if err := s.deps.saveUsers(ctx, member); err != nil {
			log.WithFields(log.Fields{
				"guild_id":   company.GuildID,
				"company_id": company.ID,
				"user_id":    m.ID,
				"error":      err,
			}).Error("Failed to pay salary")
			continue
		}
		evs = append(evs, balanceChanged(member, events.ReasonPayroll, walletBefore, bankBefore))

		s.deps.notify(ctx, m.ID, "日給支払いのお知らせ",
			fmt.Sprintf("会社「%s」から日給として **%s** いんコインが支払われました。\n現在の所持金: %s いんコイン",
				company.Name, utils.FormatCoins(company.DailySalary), utils.FormatCoins(member.Balance)))
	}

	// The payout time advances even when a member could not be paid
	company.LastPayoutTime = now
	if err := s.deps.saveCompany(ctx, company); err != nil {
		return false, false, err
	}

	evs = append(evs, events.PayrollSettledEvent{
		GuildID:        company.GuildID,
		CompanyID:      company.ID,
		MaintenanceFee: fee,
		SalaryPaid:     payroll,
		Members:        len(company.Members),
		RemainingFunds: company.Budget,
		SettledAt:      now,
	})
	return false, true, s.deps.publish(evs...)
}

func (s *PayrollService) bankrupt(ctx context.Context, company *entities.Company, fee, payroll int64) error {
	log.WithFields(log.Fields{
		"guild_id":   company.GuildID,
		"company_id": company.ID,
		"budget":     company.Budget,
		"required":   fee + payroll,
	}).Warn("Company cannot cover maintenance and payroll, dissolving")

	if err := dissolveCompany(ctx, s.deps, company); err != nil {
		return err
	}

	s.deps.notify(ctx, company.OwnerID, "会社倒産のお知らせ",
		fmt.Sprintf("あなたの会社「%s」は、維持費と日給の支払いに必要な資金が不足したため倒産しました。\n必要な維持費: %s いんコイン\n必要な日給合計: %s いんコイン\n現在の資金: %s いんコイン\n\n社員は全員会社から脱退し、「%s」に戻りました。",
			company.Name,
			utils.FormatCoins(fee),
			utils.FormatCoins(payroll),
			utils.FormatCoins(company.Budget),
			entities.JobUnemployed))

	for _, m := range company.Members {
		if m.ID == company.OwnerID {
			continue
		}
		s.deps.notify(ctx, m.ID, "会社解散のお知らせ",
			fmt.Sprintf("所属していた会社「%s」は資金不足のため解散しました。\nあなたの職業は「%s」に戻りました。", company.Name, entities.JobUnemployed))
	}

	return s.deps.publish(events.CompanyDeletedEvent{
		GuildID:   company.GuildID,
		CompanyID: company.ID,
		Name:      company.Name,
		Members:   company.MemberIDs(),
		Bankrupt:  true,
	})
}
