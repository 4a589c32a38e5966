package analysis

// DefaultCurrencyKey 未单独配置的币种使用的回退键
const DefaultCurrencyKey = "DEFAULT"

// Band 单个费率区间
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FundingBands 资金费率三档区间
// 注意：分档判定只使用各档的Min值，Max仅用于记录区间形状
type FundingBands struct {
	Normal     Band `json:"normal"`
	Hot        Band `json:"hot"`
	Overheated Band `json:"overheated"`
}

// OIBands 未平仓合约阈值（单位：百万美元）
type OIBands struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ThresholdTable 按基础币种索引的阈值表，带DEFAULT回退
type ThresholdTable struct {
	funding map[string]FundingBands
	oi      map[string]OIBands
}

// NewThresholdTable 创建阈值表
// 入参缺少DEFAULT项时使用内置默认值补齐，保证查询永不失败
func NewThresholdTable(funding map[string]FundingBands, oi map[string]OIBands) *ThresholdTable {
	f := make(map[string]FundingBands, len(funding)+1)
	for k, v := range funding {
		f[k] = v
	}
	if _, ok := f[DefaultCurrencyKey]; !ok {
		f[DefaultCurrencyKey] = DefaultFundingBands()[DefaultCurrencyKey]
	}

	o := make(map[string]OIBands, len(oi)+1)
	for k, v := range oi {
		o[k] = v
	}
	if _, ok := o[DefaultCurrencyKey]; !ok {
		o[DefaultCurrencyKey] = DefaultOIBands()[DefaultCurrencyKey]
	}

	return &ThresholdTable{funding: f, oi: o}
}

// FundingBandsFor 查询币种的资金费率阈值，未配置时返回DEFAULT项
func (t *ThresholdTable) FundingBandsFor(baseCurrency string) FundingBands {
	if bands, ok := t.funding[baseCurrency]; ok {
		return bands
	}
	return t.funding[DefaultCurrencyKey]
}

// OIBandsFor 查询币种的未平仓合约阈值，未配置时返回DEFAULT项
func (t *ThresholdTable) OIBandsFor(baseCurrency string) OIBands {
	if bands, ok := t.oi[baseCurrency]; ok {
		return bands
	}
	return t.oi[DefaultCurrencyKey]
}

// DefaultFundingBands 内置资金费率阈值表
func DefaultFundingBands() map[string]FundingBands {
	return map[string]FundingBands{
		"BTC": {
			Normal:     Band{Min: 0.0, Max: 0.0003},    // 0% ~ 0.03%
			Hot:        Band{Min: 0.0005, Max: 0.001},  // 0.05% ~ 0.10%
			Overheated: Band{Min: 0.001, Max: 999},     // > 0.10%
		},
		"ETH": {
			Normal:     Band{Min: 0.0, Max: 0.0005},    // 0% ~ 0.05%
			Hot:        Band{Min: 0.001, Max: 0.0015},  // 0.10% ~ 0.15%
			Overheated: Band{Min: 0.002, Max: 999},     // > 0.20%
		},
		DefaultCurrencyKey: { // 其他小币
			Normal:     Band{Min: -0.005, Max: 0.005}, // -0.5% ~ 0.5%
			Hot:        Band{Min: 0.01, Max: 0.015},   // 1% ~ 1.5%
			Overheated: Band{Min: 0.02, Max: 999},     // > 2%
		},
	}
}

// DefaultOIBands 内置未平仓合约阈值表（百万美元）
func DefaultOIBands() map[string]OIBands {
	return map[string]OIBands{
		"BTC":              {Low: 1000, High: 5000},
		"ETH":              {Low: 500, High: 2000},
		DefaultCurrencyKey: {Low: 50, High: 200},
	}
}
