package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap 以 JSON 文本存储的开放元数据
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid type for JSONMap")
	}

	if len(bytes) == 0 {
		*j = make(JSONMap)
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// GetString 读取字符串字段，缺失或类型不符返回空串
func (j JSONMap) GetString(key string) string {
	if j == nil {
		return ""
	}
	if s, ok := j[key].(string); ok {
		return s
	}
	return ""
}
