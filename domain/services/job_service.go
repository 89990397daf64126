package services

import (
	"context"

	"incoin/domain/entities"
	"incoin/domain/interfaces"
	"incoin/domain/utils"
	"incoin/events"
)

// JobService manages job assignments
type JobService struct {
	deps Dependencies
}

// NewJobService creates a new job service
func NewJobService(deps Dependencies) *JobService {
	return &JobService{deps: deps}
}

// Assign sets a user's job on behalf of an administrator, free of charge
func (s *JobService) Assign(ctx context.Context, userID int64, jobName string) (*entities.UserAccount, error) {
	if jobName == entities.JobPresident {
		return nil, newRuleError("「%s」は会社を設立した場合のみ就任できます。", entities.JobPresident)
	}
	job, ok := LookupJob(jobName)
	if !ok || !job.Selectable {
		return nil, newRuleError("「%s」という職業は存在しません。", jobName)
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if user.Job == entities.JobPresident {
		return nil, newRuleError("社長の職業は変更できません。")
	}

	user.Job = job.Name
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Remove makes a user unemployed. It reports false when the user already was.
func (s *JobService) Remove(ctx context.Context, userID int64) (bool, error) {
	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	switch user.Job {
	case entities.JobPresident:
		return false, newRuleError("社長の職業は解除できません。")
	case entities.JobUnemployed:
		return false, nil
	}

	user.Job = entities.JobUnemployed
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// Change switches the user's own job, charging the job's change cost
func (s *JobService) Change(ctx context.Context, userID int64, jobName string) (*entities.UserAccount, error) {
	if jobName == entities.JobPresident {
		return nil, newRuleError("「%s」には転職できません。", entities.JobPresident)
	}
	job, ok := LookupJob(jobName)
	if !ok || !job.Selectable {
		return nil, newRuleError("「%s」という職業は存在しません。", jobName)
	}

	unlock := s.deps.Store.Lock(interfaces.UserLockKey(userID))
	defer unlock()

	user := s.deps.Store.User(ctx, userID)
	if user.Job == entities.JobPresident {
		return nil, newRuleError("社長は転職できません。")
	}
	if user.Job == job.Name {
		return nil, newRuleError("既に「%s」として働いています。", job.Name)
	}
	if user.Balance < job.ChangeCost {
		return nil, newRuleError("所持金が足りません。転職には %s いんコインが必要です。", utils.FormatCoins(job.ChangeCost))
	}

	walletBefore, bankBefore := user.Balance, user.BankBalance
	user.AddBalance(-job.ChangeCost)
	user.Job = job.Name
	if err := s.deps.saveUsers(ctx, user); err != nil {
		return nil, err
	}

	if job.ChangeCost > 0 {
		if err := s.deps.publish(balanceChanged(user, events.ReasonJobChange, walletBefore, bankBefore)); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// List returns the job catalog
func (s *JobService) List() []Job {
	return Jobs()
}

// Current returns the user's job
func (s *JobService) Current(ctx context.Context, userID int64) string {
	return s.deps.Store.User(ctx, userID).Job
}
