// Package model はドメインモデルを定義する。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventStatus はイベントの状態を表す。
type EventStatus string

const (
	// EventStatusPending は未完了のイベント状態。作成時のデフォルト。
	EventStatusPending EventStatus = "pending"
	// EventStatusCompleted は完了済みのイベント状態。
	EventStatusCompleted EventStatus = "completed"
)

// Event はユーザーが所有するイベントを表す。
// OwnerIDは作成者のユーザーIDで、すべての読み書きは(id, owner_id)で
// フィルタされる。
type Event struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Date      EventDate   `json:"date"`
	OwnerID   string      `json:"owner_id"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// EventDate はイベントのnullableな日付を表す。
// リクエストボディではISO形式の文字列または{year, month, day}構造のどちらも
// 受け付ける。解釈できない値はエラーにせずnullに落とす寛容なポリシー。
type EventDate struct {
	Time  time.Time
	Valid bool
}

// NewEventDate は有効なEventDateを生成する。
func NewEventDate(t time.Time) EventDate {
	return EventDate{Time: t, Valid: true}
}

// structuredDate は{year, month, day}形式の日付入力。
type structuredDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// dateLayouts は文字列日付として受け付けるレイアウト。
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON は寛容な日付デコードを行う。
// 文字列・{year, month, day}・nullを受け付け、解釈できない形はnullとして
// 扱う。このメソッドがエラーを返すことはない。
func (d *EventDate) UnmarshalJSON(data []byte) error {
	d.Time, d.Valid = time.Time{}, false

	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				d.Time, d.Valid = t.UTC(), true
				return nil
			}
		}
		return nil
	}

	var sd structuredDate
	if err := json.Unmarshal(data, &sd); err == nil && sd.Year != 0 {
		if sd.Month < 1 || sd.Month > 12 || sd.Day < 1 || sd.Day > 31 {
			return nil
		}
		d.Time = time.Date(sd.Year, time.Month(sd.Month), sd.Day, 0, 0, 0, 0, time.UTC)
		d.Valid = true
		return nil
	}

	return nil
}

// MarshalJSON はRFC 3339文字列またはnullを出力する。
func (d EventDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// Value はdriver.Valuerを実装する。
func (d EventDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Time, nil
}

// Scan はsql.Scannerを実装する。
func (d *EventDate) Scan(src any) error {
	if src == nil {
		d.Time, d.Valid = time.Time{}, false
		return nil
	}
	t, ok := src.(time.Time)
	if !ok {
		return fmt.Errorf("unsupported type for EventDate: %T", src)
	}
	d.Time, d.Valid = t.UTC(), true
	return nil
}
