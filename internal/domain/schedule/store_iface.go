package schedule

import "context"

type StoreAPI interface {
	ListAssignments(ctx context.Context) ([]Assignment, error)
	ApplyPlan(ctx context.Context, plan Plan) error
}
