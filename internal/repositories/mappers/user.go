package mappers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"

	"github.com/jackc/pgx/v5"
)

// UserFromRow 扫描单行用户记录。
func UserFromRow(row pgx.Row) (*po.User, error) {
	var u po.User
	if err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.Bio,
		&u.AvatarURL,
		&u.Embedding,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// UsersFromRows 扫描多行用户记录并关闭 rows。
func UsersFromRows(rows pgx.Rows) ([]*po.User, error) {
	defer rows.Close()
	var users []*po.User
	for rows.Next() {
		u, err := UserFromRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
