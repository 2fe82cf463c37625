// Package scan 解析扫码枪的原始载荷（GS1/HIBC/分隔符/裸值），
// 输出结构化字段供收货与分配流程使用。纯函数，无任何IO
package scan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 载荷格式
const (
	FormatGS1       = "gs1"
	FormatHIBC      = "hibc"
	FormatDelimited = "delimited"
	FormatRaw       = "raw"
)

// Result 解码结果。解析失败的字段保持零值，Decode从不报错
type Result struct {
	Format         string     `json:"format"`
	GTIN           string     `json:"gtin,omitempty"`
	Lot            string     `json:"lot,omitempty"`
	Serial         string     `json:"serial,omitempty"`
	Quantity       int        `json:"quantity,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Manufacturer   string     `json:"manufacturer,omitempty"`
	SKU            string     `json:"sku,omitempty"`
}

var gs1AIPattern = regexp.MustCompile(`\((\d{2,4})\)`)

// Decode 按 GS1 → HIBC → 分隔符启发式 → 裸批次号 的顺序尝试解码
func Decode(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Format: FormatRaw}
	}

	if r, ok := decodeGS1(raw); ok {
		return r
	}
	if r, ok := decodeHIBC(raw); ok {
		return r
	}
	if r, ok := decodeDelimited(raw); ok {
		return r
	}

	// 兜底：整段输入当作批次号
	return Result{Format: FormatRaw, Lot: raw}
}

// decodeGS1 解析括号标注的应用标识符：
// (01)GTIN (10)批次 (21)序列号 (30)/(37)数量 (17)到期日 (240)厂商货号
func decodeGS1(raw string) (Result, bool) {
	matches := gs1AIPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return Result{}, false
	}

	r := Result{Format: FormatGS1}
	for i, m := range matches {
		ai := raw[m[2]:m[3]]
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		value := strings.TrimSpace(raw[m[1]:end])
		if value == "" {
			continue
		}

		switch ai {
		case "01":
			r.GTIN = value
		case "10":
			r.Lot = value
		case "21":
			r.Serial = value
		case "30", "37":
			if n, err := strconv.Atoi(value); err == nil {
				r.Quantity = n
			}
		case "17":
			if t := parseGS1Date(value); t != nil {
				r.ExpirationDate = t
			}
		case "240":
			r.Manufacturer = value
			r.SKU = value
		}
	}
	return r, true
}

// parseGS1Date 解析YYMMDD，世纪按50年窗口推算；DD为00表示月末
func parseGS1Date(s string) *time.Time {
	if len(s) != 6 {
		return nil
	}
	yy, err1 := strconv.Atoi(s[0:2])
	mm, err2 := strconv.Atoi(s[2:4])
	dd, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	if mm < 1 || mm > 12 || dd < 0 || dd > 31 {
		return nil
	}

	year := 2000 + yy
	if year > time.Now().Year()+50 {
		year -= 100
	}

	if dd == 0 {
		t := time.Date(year, time.Month(mm)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return &t
	}
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return &t
}

// decodeHIBC 解析HIBC条码：+或=引导，斜杠分隔主段/副段。
// 主段前4位为厂商代码其余为货号，副段去掉$前缀后为批次，第三段为序列号
func decodeHIBC(raw string) (Result, bool) {
	if !strings.HasPrefix(raw, "+") && !strings.HasPrefix(raw, "=") {
		return Result{}, false
	}

	r := Result{Format: FormatHIBC}
	segments := strings.Split(raw[1:], "/")

	primary := segments[0]
	if len(primary) > 4 {
		r.Manufacturer = primary[:4]
		sku := primary[4:]
		// 末位是校验字符
		if len(sku) > 1 {
			sku = sku[:len(sku)-1]
		}
		r.SKU = sku
	} else {
		r.SKU = primary
	}

	if len(segments) > 1 {
		r.Lot = strings.TrimLeft(segments[1], "$")
	}
	if len(segments) > 2 {
		r.Serial = strings.TrimLeft(segments[2], "$")
	}
	return r, true
}

var delimiters = []string{"|", ",", ";", "\t"}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// decodeDelimited 分隔符启发式：14位数字为GTIN，纯数字为数量，
// 其余字段按出现顺序依次填入 货号、批次、序列号
func decodeDelimited(raw string) (Result, bool) {
	for _, d := range delimiters {
		if !strings.Contains(raw, d) {
			continue
		}

		r := Result{Format: FormatDelimited}
		textIdx := 0
		for _, field := range strings.Split(raw, d) {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			switch {
			case len(field) == 14 && isDigits(field):
				r.GTIN = field
			case isDigits(field):
				if n, err := strconv.Atoi(field); err == nil {
					r.Quantity = n
				}
			default:
				switch textIdx {
				case 0:
					r.SKU = field
				case 1:
					r.Lot = field
				case 2:
					r.Serial = field
				}
				textIdx++
			}
		}
		return r, true
	}
	return Result{}, false
}
