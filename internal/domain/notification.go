package domain

type NotificationKind string

const (
	NotificationKindWelcome          NotificationKind = "WELCOME"
	NotificationKindReceipt          NotificationKind = "RECEIPT"
	NotificationKindDebtNotice       NotificationKind = "DEBT_NOTICE"
	NotificationKindCheckoutReminder NotificationKind = "CHECKOUT_REMINDER"
	NotificationKindAdminAlert       NotificationKind = "ADMIN_ALERT"
)
