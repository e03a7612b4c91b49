package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"funny-video/internal/appcore"
	"funny-video/internal/types"
	"funny-video/log"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RunPipeline drives one submission through every stage in order. Stages are
// gated on completion, not on success: a skipped stage hands an empty value to
// the next one. Only a failed probe aborts the run early. The returned error is
// reserved for problems outside the stages, such as an unusable run directory.
func (s *Service) RunPipeline(ctx context.Context, sub types.Submission) (*types.Run, error) {
	run := &types.Run{Submission: sub, Status: appcore.RunStatusRunning}
	logger := log.ForRun(sub.RunId)

	dirs, err := prepareRunDirs(sub.RunId)
	if err != nil {
		run.Status = appcore.RunStatusFailed
		s.persist(run, appcore.StageProbe, err.Error())
		return run, fmt.Errorf("prepare run dirs: %w", err)
	}
	run.Dirs = dirs
	s.persist(run, appcore.StageProbe, "")
	logger.Info("开始处理任务", zap.String("source", sub.SourcePath), zap.String("moments", sub.Moments))

	input, warning := s.NormalizeUpload(ctx, sub.SourcePath, dirs.Root)
	run.InputPath = input

	report, err := s.Probe(ctx, input)
	if err != nil {
		logger.Error("视频信息解析失败，终止任务", zap.Error(err))
		return s.finish(run, appcore.Fatal(appcore.StageProbe, err)), nil
	}
	run.Probe = &report
	probeWarnings := lo.Filter([]string{warning}, func(w string, _ int) bool { return w != "" })
	if !s.record(ctx, run, appcore.Succeeded(appcore.StageProbe, probeWarnings...)) {
		return s.finish(run), nil
	}

	timestamps, planWarnings := PlanTimestamps(sub.Moments, report.Duration)
	run.Timestamps = timestamps
	planOutcome := appcore.Succeeded(appcore.StagePlan, planWarnings...)
	if len(timestamps) == 0 {
		planOutcome = appcore.Skipped(appcore.StagePlan, "没有有效的时间点 no valid timestamps", planWarnings...)
	}
	if !s.record(ctx, run, planOutcome) {
		return s.finish(run), nil
	}

	snapshots, outcome := s.ExtractSnapshots(ctx, input, dirs.Snapshots, timestamps)
	run.Snapshots = snapshots
	if !s.record(ctx, run, outcome) {
		return s.finish(run), nil
	}

	styled, outcome := s.RestyleSnapshots(ctx, snapshots, dirs.Funnies)
	run.StyledImages = styled
	if !s.record(ctx, run, outcome) {
		return s.finish(run), nil
	}

	clips, outcome := s.SynthesizeClips(ctx, styled, report, dirs.Funnies)
	run.Clips = clips
	if !s.record(ctx, run, outcome) {
		return s.finish(run), nil
	}

	segments, outcome := s.SplitSegments(ctx, input, dirs.Result, timestamps)
	run.Segments = segments
	if !s.record(ctx, run, outcome) {
		return s.finish(run), nil
	}

	merged, outcome := s.Merge(ctx, segments, clips, report.HasAudio, dirs.Result)
	run.Merge = merged
	if !s.record(ctx, run, outcome) {
		return s.finish(run), nil
	}

	published, outcome := s.Publish(ctx, run)
	run.Publish = published
	s.record(ctx, run, outcome)

	run = s.finish(run)
	logger.Info("任务处理结束", zap.String("status", string(run.Status)))
	return run, nil
}

// record appends o and persists progress. It reports false when ctx is done,
// in which case the next stage is recorded as failed.
func (s *Service) record(ctx context.Context, run *types.Run, o appcore.Outcome) bool {
	run.Outcomes = append(run.Outcomes, o)
	log.ForRun(run.RunId).Info("阶段完成", zap.String("outcome", o.String()), zap.Strings("warnings", o.Warnings))
	if err := ctx.Err(); err != nil && o.Stage != appcore.StagePublish {
		run.Outcomes = append(run.Outcomes, appcore.Failed(o.Stage+1, err))
		return false
	}
	next := o.Stage
	if next < appcore.StagePublish {
		next++
	}
	s.persist(run, next, "")
	return true
}

func (s *Service) finish(run *types.Run, outcomes ...appcore.Outcome) *types.Run {
	run.Outcomes = append(run.Outcomes, outcomes...)
	run.Status = appcore.Aggregate(run.Outcomes)
	last := run.Outcomes[len(run.Outcomes)-1]
	reason := ""
	if run.Status == appcore.RunStatusAborted || run.Status == appcore.RunStatusFailed {
		reason = failReason(run.Outcomes)
	}
	s.persist(run, last.Stage, reason)
	return run
}

func failReason(outcomes []appcore.Outcome) string {
	bad, ok := lo.Find(outcomes, func(o appcore.Outcome) bool {
		return o.State == appcore.OutcomeFatal || o.State == appcore.OutcomeFailed
	})
	if !ok {
		return ""
	}
	return bad.String()
}

// StageReports converts outcomes into their stored form.
func StageReports(outcomes []appcore.Outcome) []types.StageReport {
	return lo.Map(outcomes, func(o appcore.Outcome, _ int) types.StageReport {
		r := types.StageReport{Stage: o.Stage.String(), State: o.State.String(), Reason: o.Reason, Warnings: o.Warnings}
		if !o.FinishedAt.IsZero() {
			r.FinishedAt = o.FinishedAt.Unix()
		}
		return r
	})
}

func (s *Service) persist(run *types.Run, current appcore.Stage, failReason string) {
	if s.Runs == nil {
		return
	}
	outcomes, err := json.Marshal(StageReports(run.Outcomes))
	if err != nil {
		log.GetLogger().Error("序列化阶段结果失败", zap.Error(err))
		outcomes = []byte("[]")
	}
	record := &types.RunRecord{
		RunId:        run.RunId,
		UserId:       run.UserId,
		Title:        run.Title,
		Description:  run.Description,
		Moments:      run.Moments,
		SourcePath:   run.SourcePath,
		WorkDir:      run.Dirs.Root,
		Status:       string(run.Status),
		CurrentStage: current.String(),
		Timestamps:   joinInts(run.Timestamps),
		Outcomes:     string(outcomes),
		FailReason:   failReason,
	}
	if run.Status.IsTerminal() {
		record.CurrentStage = ""
	}
	if run.Merge != nil {
		record.MergedPath = run.Merge.MergedPath
	}
	if run.Publish != nil {
		record.CoverPath = run.Publish.CoverPath
		record.FirstImageUrl = run.Publish.FirstImageUrl
		record.ResultVideoUrl = run.Publish.ResultVideoUrl
		record.Duration = run.Publish.Duration
	}
	if err = s.Runs.SaveRun(record); err != nil {
		log.ForRun(run.RunId).Error("保存任务状态失败", zap.Error(err))
	}
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(v int, _ int) string { return strconv.Itoa(v) }), ",")
}
