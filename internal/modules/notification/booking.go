package notification

import (
	"context"
	"fmt"

	"bookxe/internal/domain"
)

const travelTimeLayout = "02/01/2006 15:04"

func (s *Service) NotifyBookingCreated(ctx context.Context, b *domain.BookingRequest) error {
	_, err := s.Emit(ctx, ToUser(b.RequesterID), Message{
		Type:      domain.NotifBookingCreated,
		Title:     "Yêu cầu đặt xe mới",
		Body:      fmt.Sprintf("Bạn đã tạo yêu cầu đặt xe đi %s", b.Destination),
		Severity:  domain.SeveritySuccess,
		BookingID: b.ID,
	})
	return err
}

// NotifyNewWork tells every holder of role that b is waiting for their
// decision. The wording depends on whether b is new or was handed over by
// the previous stage.
func (s *Service) NotifyNewWork(ctx context.Context, role domain.Role, b *domain.BookingRequest) error {
	requester := b.RequesterName
	if requester == "" {
		requester = "Nhân viên"
	}

	title := "Yêu cầu đặt xe mới"
	body := fmt.Sprintf("%s vừa tạo yêu cầu đi %s", requester, b.Destination)
	if prev, ok := previousStage(b.Status); ok {
		title = "Yêu cầu đặt xe chờ duyệt"
		body = fmt.Sprintf("Yêu cầu đi %s của %s đã được %s duyệt, đang chờ bạn", b.Destination, requester, stageLabel(prev))
	}

	_, err := s.Emit(ctx, ToRole(role), Message{
		Type:      domain.NotifBookingNewWork,
		Title:     title,
		Body:      body,
		Severity:  domain.SeverityInfo,
		BookingID: b.ID,
	})
	return err
}

// previousStage returns the stage that approved b into status, if any.
func previousStage(status domain.BookingStatus) (domain.Stage, bool) {
	switch status {
	case domain.BookingPendingKorea:
		return domain.StageViet, true
	case domain.BookingPendingAdmin:
		return domain.StageKorea, true
	default:
		return "", false
	}
}

func (s *Service) NotifyStageApproved(ctx context.Context, b *domain.BookingRequest, stage domain.Stage) error {
	_, err := s.Emit(ctx, ToUser(b.RequesterID), Message{
		Type:      domain.NotifBookingStage,
		Title:     "Yêu cầu đã qua một cấp duyệt",
		Body:      fmt.Sprintf("Yêu cầu đi %s đã được duyệt ở cấp %s", b.Destination, stageLabel(stage)),
		Severity:  domain.SeverityInfo,
		BookingID: b.ID,
	})
	return err
}

func (s *Service) NotifyBookingApproved(ctx context.Context, b *domain.BookingRequest) error {
	_, err := s.Emit(ctx, ToUser(b.RequesterID), Message{
		Type:      domain.NotifBookingApproved,
		Title:     "Yêu cầu đặt xe đã được duyệt",
		Body:      fmt.Sprintf("Chuyến đi %s lúc %s đã được duyệt", b.Destination, b.TravelTime.Format(travelTimeLayout)),
		Severity:  domain.SeveritySuccess,
		BookingID: b.ID,
	})
	return err
}

func (s *Service) NotifyBookingRejected(ctx context.Context, b *domain.BookingRequest) error {
	_, err := s.Emit(ctx, ToUser(b.RequesterID), Message{
		Type:      domain.NotifBookingRejected,
		Title:     "Yêu cầu đặt xe bị từ chối",
		Body:      fmt.Sprintf("Yêu cầu đi %s đã bị từ chối", b.Destination),
		Severity:  domain.SeverityError,
		BookingID: b.ID,
	})
	return err
}

func (s *Service) NotifyBookingExpired(ctx context.Context, b *domain.BookingRequest) error {
	body := fmt.Sprintf("Yêu cầu đi %s đã tự động hủy", b.Destination)
	if b.CancellationReason != "" {
		body += ". Lý do: " + b.CancellationReason
	}
	_, err := s.Emit(ctx, ToUser(b.RequesterID), Message{
		Type:      domain.NotifBookingCancelled,
		Title:     "Yêu cầu đặt xe đã bị hủy",
		Body:      body,
		Severity:  domain.SeverityWarning,
		BookingID: b.ID,
	})
	return err
}

func stageLabel(stage domain.Stage) string {
	switch stage {
	case domain.StageViet:
		return "Quản lý Việt Nam"
	case domain.StageKorea:
		return "Quản lý Hàn Quốc"
	default:
		return "Admin"
	}
}
