package registry

import (
	"encoding/json"
	"time"

	"github.com/dev-mohitbeniwal/themis/model"
)

type entityRecord struct {
	URI          string            `gorm:"column:uri;primaryKey"`
	Type         string            `gorm:"column:type;not null"`
	RegisteredAt time.Time         `gorm:"column:registered_at;autoCreateTime"`
	Attributes   []attributeRecord `gorm:"foreignKey:EntityURI;references:URI;constraint:OnDelete:CASCADE"`
}

func (entityRecord) TableName() string { return "entities" }

type attributeRecord struct {
	EntityURI    string    `gorm:"column:entity_uri;primaryKey"`
	Key          string    `gorm:"column:key;primaryKey"`
	ValueJSON    string    `gorm:"column:value_json;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
	RegisteredAt time.Time `gorm:"column:registered_at;autoCreateTime"`
}

func (attributeRecord) TableName() string { return "attributes" }

func encodeValue(v model.Value) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeStored reads a value_json column. Rows written as bare text by
// older writers come back as plain strings.
func decodeStored(text string) model.Value {
	v, err := model.ParseValue(text)
	if err != nil {
		return model.StringValue(text)
	}
	return v
}

func attributeRecords(uri string, attrs model.Attributes) ([]attributeRecord, error) {
	records := make([]attributeRecord, 0, len(attrs))
	for _, key := range attrs.Keys() {
		encoded, err := encodeValue(attrs[key])
		if err != nil {
			return nil, err
		}
		records = append(records, attributeRecord{EntityURI: uri, Key: key, ValueJSON: encoded})
	}
	return records, nil
}

func toEntity(record entityRecord) model.Entity {
	entity := model.Entity{
		URI:          record.URI,
		Type:         model.EntityType(record.Type),
		RegisteredAt: record.RegisteredAt,
		Attributes:   make([]model.Attribute, 0, len(record.Attributes)),
	}
	for _, attr := range record.Attributes {
		entity.Attributes = append(entity.Attributes, model.Attribute{Key: attr.Key, Value: decodeStored(attr.ValueJSON)})
	}
	return entity
}
