package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
)

const (
	paramsKey = "user"

	// paramsFormatLegacy stores a single scalar life expectancy.
	paramsFormatLegacy = 1
	// paramsFormatCurrent stores the three scenarios.
	paramsFormatCurrent = 2

	dateLayout = "2006-01-02"
)

type paramsPayloadV1 struct {
	DOB            string      `json:"dob"`
	Conditions     []Condition `json:"conditions"`
	LifeExpectancy float64     `json:"lifeExpectancy"`
}

type paramsPayloadV2 struct {
	DOB              string       `json:"dob"`
	Conditions       []Condition  `json:"conditions"`
	LifeExpectancies Expectancies `json:"lifeExpectancies"`
}

// PutLifeParameters replaces the singleton parameter record.
func (db *DB) PutLifeParameters(ctx context.Context, p LifeParameters) error {
	payload, err := json.Marshal(paramsPayloadV2{
		DOB:              p.DateOfBirth.Format(dateLayout),
		Conditions:       p.Conditions,
		LifeExpectancies: p.Expectancies,
	})
	if err != nil {
		return fmt.Errorf("encode life parameters: %w", err)
	}

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = db.now()
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO life_parameters (id, format_version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			format_version = excluded.format_version,
			payload        = excluded.payload,
			updated_at     = excluded.updated_at
	`, paramsKey, paramsFormatCurrent, string(payload), updated.UnixMilli())
	if err != nil {
		return fmt.Errorf("put life parameters: %w", err)
	}
	return nil
}

// GetLifeParameters returns the stored parameter record, upgrading older
// payload formats on the way out. Returns nil, nil when nothing is stored.
func (db *DB) GetLifeParameters(ctx context.Context) (*LifeParameters, error) {
	var version int
	var payload string
	var updated int64
	err := db.QueryRowContext(ctx, `
		SELECT format_version, payload, updated_at FROM life_parameters WHERE id = ?
	`, paramsKey).Scan(&version, &payload, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get life parameters: %w", err)
	}

	p, err := upgradeParameters(version, []byte(payload), db.now())
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return p, nil
}

// upgradeParameters decodes a stored payload of the given format version into
// the current model. now is used to compute the age a legacy record needs.
func upgradeParameters(version int, payload []byte, now time.Time) (*LifeParameters, error) {
	switch version {
	case paramsFormatCurrent:
		var v2 paramsPayloadV2
		if err := json.Unmarshal(payload, &v2); err != nil {
			return nil, fmt.Errorf("decode life parameters v2: %w", err)
		}
		dob, err := time.Parse(dateLayout, v2.DOB)
		if err != nil {
			return nil, fmt.Errorf("parse dob %q: %w", v2.DOB, err)
		}
		return &LifeParameters{
			DateOfBirth:  dob,
			Conditions:   v2.Conditions,
			Expectancies: v2.LifeExpectancies,
		}, nil

	case paramsFormatLegacy:
		var v1 paramsPayloadV1
		if err := json.Unmarshal(payload, &v1); err != nil {
			return nil, fmt.Errorf("decode life parameters v1: %w", err)
		}
		dob, err := time.Parse(dateLayout, v1.DOB)
		if err != nil {
			return nil, fmt.Errorf("parse dob %q: %w", v1.DOB, err)
		}
		age := float64(AgeOn(dob, now))
		old := v1.LifeExpectancy
		return &LifeParameters{
			DateOfBirth: dob,
			Conditions:  v1.Conditions,
			Expectancies: Expectancies{
				Optimistic:  old + 7,
				Realistic:   old,
				Pessimistic: math.Max(age+1, old-5),
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown life parameters format %d", version)
	}
}
