package employee

import (
	"context"
	"log/slog"

	"github.com/integration-system/backend/internal/utils"
)

type step string

const (
	stepStarted          step = "started"
	stepPrimaryWritten   step = "primary_written"
	stepPrincipalCreated step = "principal_created"
	stepRoleAssigned     step = "role_assigned"
	stepMirrorWritten    step = "mirror_written"
	stepIdentitySynced   step = "identity_synced"
	stepCommitted        step = "committed"
	stepMirrorCleaned    step = "mirror_cleaned"
	stepIdentityDeleted  step = "identity_deleted"
)

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// saga 记录跨存储写入到达的步骤，以及失败时需要逆序执行的补偿动作。
// 主库事务的回滚不在这里，由调用方 defer 完成
type saga struct {
	op            string
	employeeID    int64
	reached       step
	compensations []compensation
}

func newSaga(op string) *saga {
	return &saga{
		op:      op,
		reached: stepStarted,
	}
}

func (s *saga) reach(st step) {
	s.reached = st
	slog.Debug("员工写入进度", "op", s.op, "employee_id", s.employeeID, "step", st)
}

func (s *saga) onFailure(name string, fn func(ctx context.Context) error) {
	s.compensations = append(s.compensations, compensation{name: name, fn: fn})
}

// compensate 逆序执行所有补偿动作，返回执行失败的补偿名称。
// 请求被取消时补偿仍需执行，因此使用不会被取消的 context
func (s *saga) compensate(ctx context.Context) []string {
	ctx = context.WithoutCancel(ctx)

	var failed []string
	for i := len(s.compensations) - 1; i >= 0; i-- {
		c := s.compensations[i]
		if err := c.fn(ctx); err != nil {
			failed = append(failed, c.name)
			utils.Critical(ctx, "补偿动作执行失败",
				"op", s.op,
				"employee_id", s.employeeID,
				"step", s.reached,
				"compensation", c.name,
				slog.String("error", err.Error()),
			)
			continue
		}
		slog.Info("补偿动作已执行", "op", s.op, "employee_id", s.employeeID, "compensation", c.name)
	}

	s.compensations = nil
	return failed
}
