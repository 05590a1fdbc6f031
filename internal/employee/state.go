package employee

// State 描述一个员工在主库、副库和身份系统三处的整体状态
type State string

const (
	StateNonExistent  State = "NonExistent"
	StateProvisioning State = "Provisioning"
	StateActive       State = "Active"
	StateUpdating     State = "Updating"
	StateDeleting     State = "Deleting"
	StateDeleted      State = "Deleted"
	// 主库已删除，但身份系统中仍残留身份
	StateDeletedResidual State = "Deleted+residual"
)
