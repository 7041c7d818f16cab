package jobs

import (
	"context"
	"fmt"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/utils"
)

// ExpireParcelSelections clears buffered parcel selections whose TTL has
// passed. A reserved stay that never liquidated loses its picks; the
// parcels were never occupied, so there is nothing else to undo.
func (jr *JobRunner) ExpireParcelSelections() {
	jr.runWithRecovery("ExpireParcelSelections", func() {
		ctx := context.Background()

		deleted, err := jr.store.Parcels().DeleteExpiredSelections(ctx)
		if err != nil {
			logger.Error("Failed to expire parcel selections", "error", err)
			return
		}
		if deleted > 0 {
			logger.Info("Expired parcel selections", "count", deleted)
		}
	})
}

// SendDebtorReminders messages every owing group through the gateway.
// Groups with a broken payment promise also raise an admin alert.
func (jr *JobRunner) SendDebtorReminders() {
	jr.runWithRecovery("SendDebtorReminders", func() {
		ctx := context.Background()

		debtors, err := jr.services.Reporting.Debtors(ctx)
		if err != nil {
			logger.Error("Failed to list debtors", "error", err)
			return
		}

		for _, d := range debtors {
			msg := fmt.Sprintf(
				"Hola! Le recordamos que su cuenta en el camping tiene un saldo pendiente de %s. Puede pasar por recepción para regularizarla.",
				utils.FormatCents(d.BalanceCents),
			)
			jr.services.Notifier.Notify([]string{d.ResponsiblePhone}, msg, domain.NotificationKindDebtNotice, 0)

			if d.PromiseBroken {
				alert := fmt.Sprintf(
					"Broken payment promise: group %s owes %s, promised by %s",
					d.ResponsiblePhone, utils.FormatCents(d.BalanceCents), *d.PromiseDate,
				)
				jr.services.Notifier.Notify(nil, alert, domain.NotificationKindAdminAlert, 0)
			}
		}

		logger.Info("Debtor reminders dispatched", "count", len(debtors))
	})
}

// SendDailyCashSummary emails the admin the day's register totals.
func (jr *JobRunner) SendDailyCashSummary() {
	jr.runWithRecovery("SendDailyCashSummary", func() {
		ctx := context.Background()

		today := utils.FormatDate(time.Now())
		report, err := jr.services.Reporting.CashRegister(ctx, today)
		if err != nil {
			logger.Error("Failed to build cash register report", "error", err)
			return
		}

		msg := fmt.Sprintf(
			"Cash register %s: %s total across %d payments (%d receipts pending).",
			report.Date, utils.FormatCents(report.TotalCents), len(report.Payments), report.ReceiptsPending,
		)
		for method, cents := range report.ByMethodCents {
			msg += fmt.Sprintf(" %s: %s.", method, utils.FormatCents(cents))
		}
		jr.services.Notifier.Notify(nil, msg, domain.NotificationKindAdminAlert, 0)

		logger.Info("Daily cash summary dispatched", "date", report.Date, "total_cents", report.TotalCents)
	})
}

// FlagOverdueStays reminds active stays whose planned exit date has
// passed without a checkout.
func (jr *JobRunner) FlagOverdueStays() {
	jr.runWithRecovery("FlagOverdueStays", func() {
		ctx := context.Background()

		today := utils.FormatDate(time.Now())
		stays, err := jr.store.Stays().ListOverdue(ctx, today)
		if err != nil {
			logger.Error("Failed to list overdue stays", "error", err)
			return
		}

		for i := range stays {
			stay := &stays[i]
			logger.Debug("Stay past planned exit",
				"stay_id", stay.ID,
				"responsible_phone", stay.ResponsiblePhone,
				"planned_exit_date", stay.PlannedExitDate)
			msg := fmt.Sprintf(
				"Hola! Su salida estaba prevista para el %s. Si desea extender su estadía, avísenos en recepción; de lo contrario recuerde pasar a liquidar su cuenta.",
				stay.PlannedExitDate,
			)
			jr.services.Notifier.Notify([]string{stay.ResponsiblePhone}, msg, domain.NotificationKindCheckoutReminder, 0)
		}

		logger.Info("Overdue stays flagged", "count", len(stays))
	})
}
