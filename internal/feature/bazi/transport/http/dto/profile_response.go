package dto

// ProfileResponse は命式計算のレスポンスDTOです。
type ProfileResponse struct {
	Birth BirthResponse `json:"birth"`
	Chart ChartResponse `json:"chart"`
	Luck  LuckResponse  `json:"luck"`
}

// BirthResponse は入力の出生情報です。
type BirthResponse struct {
	SolarDatetime string `json:"solar_datetime"` // 公历生日
	Gender        string `json:"gender"`         // 性别
}

// ChartResponse は四柱です。
type ChartResponse struct {
	Year  string `json:"year"`  // 年柱
	Month string `json:"month"` // 月柱
	Day   string `json:"day"`   // 日柱
	Hour  string `json:"hour"`  // 时柱
}

// LuckResponse は起運情報と大運（前九步）です。
type LuckResponse struct {
	Direction      string               `json:"direction"`       // forward | reverse
	DirectionLabel string               `json:"direction_label"` // 顺行 | 逆行
	Onset          OnsetResponse        `json:"onset"`
	OnsetLabel     string               `json:"onset_label"` // 起运岁数
	Pillars        []LuckPillarResponse `json:"pillars"`
}

// OnsetResponse は起運までの年・月・日です。
type OnsetResponse struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// LuckPillarResponse は大運の一歩です。
type LuckPillarResponse struct {
	Step   int    `json:"step"`
	Age    int    `json:"age"`
	Pillar string `json:"pillar"`
}

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
