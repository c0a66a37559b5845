package messages

// TroopLine 出征的一条兵种，Code 对应兵种表的 code。
type TroopLine struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}
