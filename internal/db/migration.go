package db

import (
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "000_create_accounts",
		sql: `
			CREATE TABLE IF NOT EXISTS accounts (
				id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				uid           CHAR(36) NOT NULL UNIQUE,
				email         VARCHAR(255) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
			)`,
	},
	{
		version: "001_create_profiles",
		sql: `
			CREATE TABLE IF NOT EXISTS profiles (
				uid                  CHAR(36) PRIMARY KEY,
				name                 VARCHAR(100) NOT NULL,
				email                VARCHAR(255) NOT NULL,
				phone                VARCHAR(30),
				dob                  VARCHAR(10) NOT NULL,
				gender               VARCHAR(20),
				diet                 VARCHAR(255),
				weight               DOUBLE NOT NULL,
				height               DOUBLE NOT NULL,
				exercise_intensity   VARCHAR(20) NOT NULL,
				body_type            VARCHAR(30),
				goal                 VARCHAR(100),
				budget               DOUBLE,
				bmi                  DOUBLE NOT NULL,
				bmr                  DOUBLE NOT NULL,
				ideal_bmi            DOUBLE NULL,
				ideal_bmr            DOUBLE NULL,
				maintenance_calories DOUBLE NOT NULL,
				any_complication     TEXT,
				explain_goal         TEXT,
				req_cal_intake       DOUBLE NULL,
				data_updated_at      DATETIME(3) NOT NULL,
				created_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at           DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				FOREIGN KEY (uid) REFERENCES accounts(uid) ON DELETE CASCADE
			)`,
	},
	{
		version: "002_create_history",
		sql: `
			CREATE TABLE IF NOT EXISTS history_records (
				id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				uid                  CHAR(36) NOT NULL,
				weight               DOUBLE NOT NULL,
				height               DOUBLE NOT NULL,
				bmi                  DOUBLE NOT NULL,
				bmr                  DOUBLE NOT NULL,
				maintenance_calories DOUBLE NOT NULL,
				exercise_intensity   VARCHAR(20),
				body_type            VARCHAR(30),
				goal                 VARCHAR(100),
				budget               DOUBLE,
				any_complication     TEXT,
				explain_goal         TEXT,
				recorded_at          DATETIME(3) NOT NULL,
				INDEX idx_history_uid_recorded (uid, recorded_at),
				FOREIGN KEY (uid) REFERENCES accounts(uid) ON DELETE CASCADE
			)`,
	},
	{
		version: "003_create_meals",
		sql: `
			CREATE TABLE IF NOT EXISTS meals (
				id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				uid         CHAR(36) NOT NULL,
				meal_name   VARCHAR(255) NOT NULL,
				cals        DOUBLE NOT NULL DEFAULT 0,
				protein     DOUBLE NOT NULL DEFAULT 0,
				carbs       DOUBLE NOT NULL DEFAULT 0,
				fat         DOUBLE NOT NULL DEFAULT 0,
				meal_time   VARCHAR(20) NOT NULL,
				eaten_at    DATETIME(3) NOT NULL,
				INDEX idx_meals_uid_eaten (uid, eaten_at),
				FOREIGN KEY (uid) REFERENCES accounts(uid) ON DELETE CASCADE
			)`,
	},
	{
		version: "004_create_password_reset_tokens",
		sql: `
			CREATE TABLE IF NOT EXISTS password_reset_tokens (
				id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				account_uid CHAR(36) NOT NULL,
				token       CHAR(6) NOT NULL,
				expires_at  DATETIME NOT NULL,
				used_at     DATETIME NULL,
				FOREIGN KEY (account_uid) REFERENCES accounts(uid) ON DELETE CASCADE
			)`,
	},
}

func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := executeMigration(db, m); err != nil {
			return err
		}

		log.Infof("applied migration: %s", m.version)
	}

	return nil
}

func isMigrationApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}

func executeMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
	}

	for _, stmt := range strings.Split(m.sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)",
		m.version,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.version, err)
	}

	return tx.Commit()
}
