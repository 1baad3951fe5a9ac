package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// IndustryAll 全行业哨兵值。
// 仅管理员账户与管理员开通码允许持有；普通用户的行业权限必须是具体行业列表。
const IndustryAll = "all"

// PredefinedIndustries 预设行业赛道列表
var PredefinedIndustries = []string{
	"人工智能", "生物医药", "新能源", "电子商务", "SaaS软件",
	"金融科技", "教育科技", "汽车交通", "企业服务", "消费品",
	"医疗健康", "文娱传媒", "房产服务", "物流供应链", "硬件制造",
}

// ── 行业权限列表自定义类型 ──

// IndustryList 用户的授权行业集合。
// 数据库中以逗号分隔的 TEXT 存储（历史格式），业务层只接触解码后的列表；
// 实现 GORM Scanner/Valuer 接口，编解码只发生在存储边界。
type IndustryList []string

// ParseIndustryList 将逗号分隔的行业字符串解码为列表。
// 去除首尾空白并丢弃空项；不做大小写或其他归一化。
func ParseIndustryList(s string) IndustryList {
	if s == "" {
		return IndustryList{}
	}
	parts := strings.Split(s, ",")
	list := make(IndustryList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}

// Scan 将数据库中的逗号分隔文本解析为 IndustryList。
func (l *IndustryList) Scan(src interface{}) error {
	if src == nil {
		*l = IndustryList{}
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("IndustryList.Scan: unsupported type %T", src)
	}
	*l = ParseIndustryList(s)
	return nil
}

// Value 将 IndustryList 序列化为逗号分隔文本。
func (l IndustryList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// String 返回存储格式（逗号分隔）
func (l IndustryList) String() string {
	return strings.Join(l, ",")
}

// IsAll 是否为全行业哨兵（列表中唯一元素为 "all"）
func (l IndustryList) IsAll() bool {
	return len(l) == 1 && l[0] == IndustryAll
}

// Contains 精确匹配判断（不做归一化）
func (l IndustryList) Contains(industry string) bool {
	for _, v := range l {
		if v == industry {
			return true
		}
	}
	return false
}
