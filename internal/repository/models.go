// Package repository persists heap samples taken by the profiler.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/runtime-analysis/pkg/model"
)

// HeapSampleRecord represents the heap_samples table.
type HeapSampleRecord struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Space         string    `gorm:"column:space;type:varchar(64);index"`
	Event         string    `gorm:"column:event;type:varchar(64)"`
	TakenAt       time.Time `gorm:"column:taken_at;index"`
	Capacity      int64     `gorm:"column:capacity"`
	Used          int64     `gorm:"column:used"`
	Kinds         JSONField `gorm:"column:kinds;type:json"`
	Constructors  JSONField `gorm:"column:constructors;type:json"`
	RetainerLines JSONField `gorm:"column:retainer_lines;type:json"`
	ReportKey     string    `gorm:"column:report_key;type:varchar(512)"`
	Version       string    `gorm:"column:version;type:varchar(32)"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for HeapSampleRecord.
func (HeapSampleRecord) TableName() string {
	return "heap_samples"
}

// ToModel converts HeapSampleRecord to model.HeapSample.
func (r *HeapSampleRecord) ToModel() (*model.HeapSample, error) {
	sample := &model.HeapSample{
		Space:    r.Space,
		Event:    r.Event,
		TakenAt:  r.TakenAt,
		Capacity: r.Capacity,
		Used:     r.Used,
	}

	if r.Kinds != nil {
		if err := json.Unmarshal(r.Kinds, &sample.Kinds); err != nil {
			return nil, err
		}
	}
	if r.Constructors != nil {
		if err := json.Unmarshal(r.Constructors, &sample.Constructors); err != nil {
			return nil, err
		}
	}
	if r.RetainerLines != nil {
		if err := json.Unmarshal(r.RetainerLines, &sample.RetainerLines); err != nil {
			return nil, err
		}
	}

	return sample, nil
}

// newHeapSampleRecord builds a record from a sample and its report location.
func newHeapSampleRecord(sample *model.HeapSample, reportKey string, version string) (*HeapSampleRecord, error) {
	kinds, err := json.Marshal(sample.Kinds)
	if err != nil {
		return nil, err
	}
	constructors, err := json.Marshal(sample.Constructors)
	if err != nil {
		return nil, err
	}
	retainers, err := json.Marshal(sample.RetainerLines)
	if err != nil {
		return nil, err
	}

	return &HeapSampleRecord{
		Space:         sample.Space,
		Event:         sample.Event,
		TakenAt:       sample.TakenAt,
		Capacity:      sample.Capacity,
		Used:          sample.Used,
		Kinds:         JSONField(kinds),
		Constructors:  JSONField(constructors),
		RetainerLines: JSONField(retainers),
		ReportKey:     reportKey,
		Version:       version,
	}, nil
}

// JSONField is a custom type for handling JSON fields in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler interface.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
