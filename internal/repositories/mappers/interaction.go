package mappers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"

	"github.com/jackc/pgx/v5"
)

// InteractionFromRow 扫描单行交互记录。
func InteractionFromRow(row pgx.Row) (*po.Interaction, error) {
	var it po.Interaction
	if err := row.Scan(
		&it.InteractionID,
		&it.UserID,
		&it.VideoID,
		&it.InteractionType,
		&it.InteractionStrength,
		&it.ViewDuration,
		&it.WatchPercentage,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

// InteractionsFromRows 扫描多行交互记录并关闭 rows。
func InteractionsFromRows(rows pgx.Rows) ([]*po.Interaction, error) {
	defer rows.Close()
	var items []*po.Interaction
	for rows.Next() {
		it, err := InteractionFromRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AnalyticsFromRow 扫描单行聚合计数记录。
func AnalyticsFromRow(row pgx.Row) (*po.VideoAnalytics, error) {
	var a po.VideoAnalytics
	if err := row.Scan(
		&a.VideoID,
		&a.TotalViews,
		&a.TotalLikes,
		&a.TotalComments,
		&a.TotalShares,
		&a.TotalBookmarks,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// CommentFromRow 扫描单行评论记录。
func CommentFromRow(row pgx.Row) (*po.Comment, error) {
	var c po.Comment
	if err := row.Scan(
		&c.CommentID,
		&c.UserID,
		&c.VideoID,
		&c.Content,
		&c.TotalLikes,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// CommentsFromRows 扫描多行评论记录并关闭 rows。
func CommentsFromRows(rows pgx.Rows) ([]*po.Comment, error) {
	defer rows.Close()
	var comments []*po.Comment
	for rows.Next() {
		c, err := CommentFromRow(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
