package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDupEntry MySQL 唯一键冲突错误码。
const mysqlDupEntry = 1062

// IsDuplicateKey 判断是否唯一约束冲突（并发 find-or-create / 1:1 槽位竞争时出现）。
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}
