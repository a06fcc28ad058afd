// Package mappers 负责把数据库行扫描为 PO 对象。
package mappers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"

	"github.com/jackc/pgx/v5"
)

// VideoFromRow 扫描单行视频记录。列顺序与仓储中的 videoColumns 保持一致。
func VideoFromRow(row pgx.Row) (*po.Video, error) {
	var v po.Video
	if err := row.Scan(
		&v.VideoID,
		&v.UserID,
		&v.VideoURL,
		&v.Caption,
		&v.VideoSize,
		&v.VideoLength,
		&v.Transcription,
		&v.Summary,
		&v.Tags,
		&v.Metadata,
		&v.Embedding,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// VideosFromRows 扫描多行视频记录并关闭 rows。
func VideosFromRows(rows pgx.Rows) ([]*po.Video, error) {
	defer rows.Close()
	var videos []*po.Video
	for rows.Next() {
		v, err := VideoFromRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}
