package audit

// Actions recorded in the audit log
const (
	ActionOtpSend            = "otp_send"
	ActionOtpVerify          = "otp_verify"
	ActionAccountCreated     = "account_open_created"
	ActionAccountApproved    = "account_approved_waiting_otp"
	ActionAccountConfirmed   = "account_open_confirmed"
	ActionAccountRejected    = "account_open_rejected"
	ActionOperationRecorded  = "operation_recorded"
	ActionOtpSettingsUpdated = "settings_otp_updated"
	ActionSmsSettingsUpdated = "settings_sms_updated"
)

// SystemActor is used for actions not attributed to a user
const SystemActor = "system"
