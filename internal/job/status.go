package job

// Status 工单状态枚举（持久化为字符串）。
type Status string

const (
	StatusQueue   Status = "queue"   // 排队中
	StatusService Status = "service" // 维修中
	StatusParts   Status = "parts"   // 等待配件
	StatusQC      Status = "qc"      // 质检中
	StatusDone    Status = "done"    // 已完成（开票后固定为该状态）
)

// AllStatuses 看板列顺序。
var AllStatuses = []Status{StatusQueue, StatusService, StatusParts, StatusQC, StatusDone}

// Valid 校验状态枚举。
func Valid(s Status) bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition 状态流转策略：扁平枚举，任意状态间都允许切换。
// 车间实际操作经常来回改（质检打回、等件途中先修别处），服务端
// 不限制流转图；开票把状态置为 done 由计费侧单独完成且不会回退。
func CanTransition(from, to Status) bool {
	return Valid(from) && Valid(to)
}
