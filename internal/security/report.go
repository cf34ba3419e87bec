package security

import "time"

// PasswordReport mirrors the argon2id parameters in use.
type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

type Report struct {
	ProductionMode     bool
	SigningAlgorithm   string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	SecretsDistinct    bool
	Argon2             PasswordReport
	OTPDigits          int
	OTPCodeTTL         time.Duration
	OTPLockoutActive   bool
	OTPSpamLockActive  bool
	LoginLockoutActive bool
	RequireIAT         bool
	MetricsActive      bool
}

type ReportInput struct {
	Development       bool
	SigningAlgorithm  string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	AccessSecret      []byte
	RefreshSecret     []byte
	Password          PasswordReport
	OTPDigits         int
	OTPCodeTTL        time.Duration
	MaxVerifyAttempts int
	LockDuration      time.Duration
	MaxRequests       int
	SpamLockDuration  time.Duration
	MaxLoginAttempts  int
	LoginWindow       time.Duration
	RequireIAT        bool
	MetricsEnabled    bool
}

func BuildReport(input ReportInput) Report {
	return Report{
		ProductionMode:     !input.Development,
		SigningAlgorithm:   input.SigningAlgorithm,
		AccessTTL:          input.AccessTTL,
		RefreshTTL:         input.RefreshTTL,
		SecretsDistinct:    len(input.AccessSecret) > 0 && string(input.AccessSecret) != string(input.RefreshSecret),
		Argon2:             input.Password,
		OTPDigits:          input.OTPDigits,
		OTPCodeTTL:         input.OTPCodeTTL,
		OTPLockoutActive:   input.MaxVerifyAttempts > 0 && input.LockDuration > 0,
		OTPSpamLockActive:  input.MaxRequests > 0 && input.SpamLockDuration > 0,
		LoginLockoutActive: input.MaxLoginAttempts > 0 && input.LoginWindow > 0,
		RequireIAT:         input.RequireIAT,
		MetricsActive:      input.MetricsEnabled,
	}
}
