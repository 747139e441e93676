package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable 与 ETL 自己的迁移记录表区分开
const migrationsTable = "uclapi_schema_migrations"

// ErrDirtyMigration 上次迁移中途失败，需要人工修复后再启动
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

// RunMigrations 创建 A/B 两代数据集表结构与切换标志行，数据由 ETL 填充
// 迁移完成后校验 timetable_lock 恰好一行
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	if version, dirty, err := m.Version(); err == nil && dirty {
		return fmt.Errorf("%w: version=%d", ErrDirtyMigration, version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, _, _ := m.Version()
	if err := verifyGenerationLock(db); err != nil {
		return err
	}
	logger.Info("数据集表结构就绪", zap.Uint("version", version))
	return nil
}

// verifyGenerationLock 切换标志表必须恰好一行，缺失时补回默认行（A 生效）
func verifyGenerationLock(db *sql.DB) error {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM timetable_lock").Scan(&n); err != nil {
		return fmt.Errorf("读取切换标志失败: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		if _, err := db.Exec("INSERT INTO timetable_lock (singleton, a) VALUES (TRUE, TRUE) ON CONFLICT DO NOTHING"); err != nil {
			return fmt.Errorf("写入默认切换标志失败: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("切换标志表应只有一行, 实际 %d 行", n)
	}
}
