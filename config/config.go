/*
Package config loads runtime configuration from the environment.

A .env file is loaded when present (development convenience); real
deployments set the variables directly. Pay rates are parsed as decimals
so configuration never passes through binary floating point.

VARIABLES:
  PORT                    HTTP port                     (default 8080)
  DB_PATH                 SQLite database path          (default fleet.db)
  TIMEZONE                operating civil timezone      (default Asia/Colombo)
  BASE_SALARY             monthly base salary           (default 27000)
  OVERTIME_RATE           per overtime hour             (default 100)
  FUEL_ALLOWANCE_PER_DAY  per distinct worked day       (default 33.30)
  ANNUAL_LEAVE_ALLOWANCE  paid annual days per year     (default 12)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/fleet-payroll/payroll"
)

// Config is the full runtime configuration.
type Config struct {
	Port     int
	DBPath   string
	Timezone string
	Payroll  payroll.Config
}

// Load reads configuration from the environment, after loading .env if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     8080,
		DBPath:   "fleet.db",
		Timezone: "Asia/Colombo",
		Payroll: payroll.Config{
			BaseSalary:           decimal.NewFromInt(27000),
			OvertimeRatePerHour:  decimal.NewFromInt(100),
			FuelAllowancePerDay:  decimal.RequireFromString("33.30"),
			AnnualLeaveAllowance: 12,
		},
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	if err := decimalVar(&cfg.Payroll.BaseSalary, "BASE_SALARY"); err != nil {
		return nil, err
	}
	if err := decimalVar(&cfg.Payroll.OvertimeRatePerHour, "OVERTIME_RATE"); err != nil {
		return nil, err
	}
	if err := decimalVar(&cfg.Payroll.FuelAllowancePerDay, "FUEL_ALLOWANCE_PER_DAY"); err != nil {
		return nil, err
	}
	if v := os.Getenv("ANNUAL_LEAVE_ALLOWANCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid ANNUAL_LEAVE_ALLOWANCE %q", v)
		}
		cfg.Payroll.AnnualLeaveAllowance = n
	}

	return cfg, nil
}

// Location resolves the configured operating timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func decimalVar(dst *decimal.Decimal, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
