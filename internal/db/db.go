// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"timetracker/internal/utils"
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}
	query := parsedURL.Query()
	if query.Get("sslmode") == "" && os.Getenv("ENV") != "production" {
		query.Set("sslmode", "disable")
	}
	parsedURL.RawQuery = query.Encode()

	DB, err = sql.Open("postgres", parsedURL.String())
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	DB.SetMaxOpenConns(20)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}
	log.Println("Успешное подключение к базе данных.")

	// Step 1: Create tables if they don't exist
	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				log.Printf("InitDB: ошибка отката транзакции: %v", rbErr)
			}
		}
	}()

	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %v", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	// Step 2: Schema migrations and data backfills
	if err = migrateDBSchema(); err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %v", err)
	}
	if err = backfillProjectCodes(); err != nil {
		return fmt.Errorf("ошибка заполнения кодов проектов: %v", err)
	}
	if err = backfillSiteCodes(); err != nil {
		return fmt.Errorf("ошибка заполнения кодов площадок: %v", err)
	}
	log.Println("Миграция схемы базы данных успешно завершена.")

	// Step 3: Create indexes, one by one to isolate errors
	for _, stmt := range splitStatements(createIndexesSQL) {
		if _, errIdx := DB.Exec(stmt); errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v. Проверьте логи.", stmt, errIdx)
		}
	}
	log.Println("Создание индексов (если не существуют) завершено.")

	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

const createTablesSQL = `
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE NOT NULL,
            full_name VARCHAR(255),
            hashed_password VARCHAR(255) NOT NULL DEFAULT '',
            role VARCHAR(50) NOT NULL DEFAULT 'user',
            hourly_rate DOUBLE PRECISION,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS projects (
            id SERIAL PRIMARY KEY,
            code VARCHAR(50) UNIQUE,
            name VARCHAR(255) UNIQUE NOT NULL,
            description TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS teams (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) UNIQUE NOT NULL
        );
        CREATE TABLE IF NOT EXISTS team_members (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            role VARCHAR(50) NOT NULL DEFAULT 'Pracownik',
            team_id INTEGER REFERENCES teams(id) ON DELETE SET NULL
        );
        CREATE TABLE IF NOT EXISTS catering_companies (
            id SERIAL PRIMARY KEY,
            tax_id VARCHAR(20) UNIQUE NOT NULL,
            name VARCHAR(255) NOT NULL
        );
        CREATE TABLE IF NOT EXISTS accommodation_companies (
            id SERIAL PRIMARY KEY,
            tax_id VARCHAR(20) UNIQUE NOT NULL,
            name VARCHAR(255) NOT NULL
        );
        CREATE TABLE IF NOT EXISTS worklogs (
            id SERIAL PRIMARY KEY,
            user_id INTEGER REFERENCES users(id) ON DELETE CASCADE NOT NULL,
            project_id INTEGER REFERENCES projects(id) ON DELETE CASCADE,
            date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
            site_code VARCHAR(50),
            employee_count INTEGER NOT NULL DEFAULT 1,
            hours_worked DOUBLE PRECISION NOT NULL DEFAULT 0,
            meals_served INTEGER NOT NULL DEFAULT 0,
            overnight_stays INTEGER NOT NULL DEFAULT 0,
            absences INTEGER NOT NULL DEFAULT 0,
            notes TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `

const createIndexesSQL = `
        CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
        CREATE INDEX IF NOT EXISTS idx_projects_code ON projects(code);
        CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members(team_id);
        CREATE INDEX IF NOT EXISTS idx_worklogs_date ON worklogs(date);
        CREATE INDEX IF NOT EXISTS idx_worklogs_user_id_date ON worklogs(user_id, date);
        CREATE INDEX IF NOT EXISTS idx_worklogs_project_id_date ON worklogs(project_id, date);
        CREATE INDEX IF NOT EXISTS idx_worklogs_team_member_id ON worklogs(team_member_id);
    `

// migration - одна идемпотентная миграция схемы.
type migration struct {
	name string
	sql  string
}

// schemaMigrations - колонки, появившиеся после первой версии схемы.
var schemaMigrations = []migration{
	{
		name: "projects.code",
		sql:  `ALTER TABLE projects ADD COLUMN IF NOT EXISTS code VARCHAR(50);`,
	},
	{
		name: "projects.code_unique",
		sql: `DO $$
              BEGIN
                  IF NOT EXISTS (
                      SELECT 1 FROM pg_constraint
                      WHERE conrelid = 'projects'::regclass
                      AND conname = 'projects_code_key'
                  ) THEN
                      ALTER TABLE projects ADD CONSTRAINT projects_code_key UNIQUE (code);
                  END IF;
              END$$;`,
	},
	{
		name: "users.hourly_rate",
		sql:  `ALTER TABLE users ADD COLUMN IF NOT EXISTS hourly_rate DOUBLE PRECISION;`,
	},
	{
		name: "users.is_active",
		sql:  `ALTER TABLE users ADD COLUMN IF NOT EXISTS is_active BOOLEAN NOT NULL DEFAULT TRUE;`,
	},
	{
		name: "worklogs.site_code_employee_count",
		sql: `ALTER TABLE worklogs
              ADD COLUMN IF NOT EXISTS site_code VARCHAR(50),
              ADD COLUMN IF NOT EXISTS employee_count INTEGER NOT NULL DEFAULT 1;`,
	},
	{
		name: "worklogs.team_member_id",
		sql:  `ALTER TABLE worklogs ADD COLUMN IF NOT EXISTS team_member_id INTEGER REFERENCES team_members(id) ON DELETE SET NULL;`,
	},
	{
		name: "worklogs.company_ids",
		sql: `ALTER TABLE worklogs
              ADD COLUMN IF NOT EXISTS catering_company_id INTEGER REFERENCES catering_companies(id) ON DELETE SET NULL,
              ADD COLUMN IF NOT EXISTS accommodation_company_id INTEGER REFERENCES accommodation_companies(id) ON DELETE SET NULL;`,
	},
	{
		name: "worklogs.project_id_nullable",
		sql:  `ALTER TABLE worklogs ALTER COLUMN project_id DROP NOT NULL;`,
	},
}

// migrateDBSchema выполняет необходимые миграции схемы базы данных.
// This function should be idempotent.
func migrateDBSchema() error {
	for _, m := range schemaMigrations {
		if _, err := DB.Exec(m.sql); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена (объект уже существует). Детали: %v", m.name, err)
				continue
			}
			return fmt.Errorf("ошибка миграции схемы ('%s'): %v", m.name, err)
		}
		log.Printf("INFO: Миграция ('%s') успешно применена или объект уже существовал.", m.name)
	}
	return nil
}

// backfillProjectCodes присваивает уникальные коды проектам без кода.
// Коды строятся из названия проекта, конфликты разрешаются суффиксами.
func backfillProjectCodes() error {
	existing, err := queryStrings(`SELECT code FROM projects WHERE code IS NOT NULL AND code <> ''`)
	if err != nil {
		return err
	}

	rows, err := DB.Query(`SELECT id, name FROM projects WHERE code IS NULL OR code = '' ORDER BY id`)
	if err != nil {
		return fmt.Errorf("выборка проектов без кода: %w", err)
	}
	type pending struct {
		id   int64
		name string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.name); err != nil {
			rows.Close()
			return fmt.Errorf("чтение проекта без кода: %w", err)
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(todo) == 0 {
		return nil
	}

	alloc := utils.NewCodeAllocator(utils.ProjectCodeMaxLen, existing...)
	for _, p := range todo {
		code := alloc.Allocate(p.id, p.name)
		if _, err := DB.Exec(`UPDATE projects SET code = $1, updated_at = NOW() WHERE id = $2`, code, p.id); err != nil {
			return fmt.Errorf("обновление кода проекта %d: %w", p.id, err)
		}
		log.Printf("backfillProjectCodes: проекту %d присвоен код %q", p.id, code)
	}
	return nil
}

// backfillSiteCodes заполняет site_code записей кодом проекта или "worklog-<id>".
func backfillSiteCodes() error {
	rows, err := DB.Query(`
        SELECT w.id, COALESCE(p.code, '')
        FROM worklogs w
        LEFT JOIN projects p ON p.id = w.project_id
        WHERE w.site_code IS NULL OR w.site_code = ''`)
	if err != nil {
		return fmt.Errorf("выборка записей без кода площадки: %w", err)
	}
	updates := make(map[int64]string)
	for rows.Next() {
		var id int64
		var projectCode string
		if err := rows.Scan(&id, &projectCode); err != nil {
			rows.Close()
			return fmt.Errorf("чтение записи без кода площадки: %w", err)
		}
		updates[id] = utils.SiteCode(projectCode, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, code := range updates {
		if _, err := DB.Exec(`UPDATE worklogs SET site_code = $1 WHERE id = $2`, code, id); err != nil {
			return fmt.Errorf("обновление кода площадки записи %d: %w", id, err)
		}
	}
	if len(updates) > 0 {
		log.Printf("backfillSiteCodes: обновлено записей: %d", len(updates))
	}
	return nil
}

func queryStrings(query string, args ...interface{}) ([]string, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// splitStatements разбивает SQL-скрипт на отдельные непустые команды.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(strings.TrimSpace(script), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}
