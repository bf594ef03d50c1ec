package handlers

import (
	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:           t.ID,
		Number:       t.Number,
		Title:        t.Title,
		Description:  t.Description,
		CategoryID:   t.CategoryID,
		PriorityID:   t.PriorityID,
		StatusID:     t.StatusID,
		RequesterID:  t.RequesterID,
		AssigneeID:   t.AssigneeID,
		TeamID:       t.TeamID,
		DepartmentID: t.DepartmentID,
		DueBy:        t.DueBy,
		ResolvedAt:   t.ResolvedAt,
		ClosedAt:     t.ClosedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Version:      t.Version,
	}
}

func ticketDetail(d *service.TicketDetails) dto.TicketDetailResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(d.Attachments))
	for i := range d.Attachments {
		attachments = append(attachments, attachmentResponse(&d.Attachments[i]))
	}
	return dto.TicketDetailResponse{
		TicketResponse:  ticketResponse(&d.Ticket),
		Category:        d.Category.Name,
		Priority:        d.Priority.Name,
		Status:          d.Status.Name,
		StatusIsFinal:   d.Status.IsFinal,
		SLABreached:     d.SLABreached,
		CommentCount:    d.CommentCount,
		AttachmentCount: d.AttachmentCount,
		Attachments:     attachments,
	}
}

func ticketPage(page repository.TicketPage) dto.TicketPageResponse {
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketResponse(&page.Items[i]))
	}
	return dto.TicketPageResponse{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.HistoryResponse {
	out := make([]dto.HistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, dto.HistoryResponse{
			ID:          h.ID,
			ChangedByID: h.ChangedByID,
			ChangeType:  string(h.ChangeType),
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out
}

func commentResponse(cm *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         cm.ID,
		AuthorID:   cm.AuthorID,
		Content:    cm.Content,
		HTML:       cm.HTML,
		IsInternal: cm.IsInternal,
		CreatedAt:  cm.CreatedAt,
	}
}

func attachmentResponse(a *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:           a.ID,
		FileName:     a.FileName,
		FilePath:     a.FilePath,
		ContentType:  a.ContentType,
		SizeBytes:    a.SizeBytes,
		UploadedByID: a.UploadedByID,
		UploadedAt:   a.UploadedAt,
	}
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		TeamID:       u.TeamID,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
	}
}

func categoryResponse(c *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		ParentID:      c.ParentID,
		DefaultTeamID: c.DefaultTeamID,
	}
}

func priorityResponse(p *domain.Priority) dto.PriorityResponse {
	return dto.PriorityResponse{
		ID:                 p.ID,
		Name:               p.Name,
		ResponseSLAHours:   p.ResponseSLAHours,
		ResolutionSLAHours: p.ResolutionSLAHours,
		SortOrder:          p.SortOrder,
	}
}

func statusResponse(s *domain.Status) dto.StatusResponse {
	return dto.StatusResponse{ID: s.ID, Name: s.Name, IsFinal: s.IsFinal, SortOrder: s.SortOrder}
}

func departmentResponse(d *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		DepartmentID: t.DepartmentID,
		LeadID:       t.LeadID,
	}
}

func notificationResponses(items []domain.Notification) []dto.NotificationResponse {
	out := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID,
			Subject:   n.Subject,
			Body:      n.Body,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

func chatMessageResponse(m *domain.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func chatThreadResponse(thread *service.ChatThread) dto.ChatThreadResponse {
	messages := make([]dto.ChatMessageResponse, 0, len(thread.Messages))
	for i := range thread.Messages {
		messages = append(messages, chatMessageResponse(&thread.Messages[i]))
	}
	return dto.ChatThreadResponse{
		ConversationID: thread.Conversation.ID,
		TicketID:       thread.Conversation.TicketID,
		Messages:       messages,
		TotalCount:     thread.TotalCount,
		PageNumber:     thread.Page.Number,
		PageSize:       thread.Page.Size,
	}
}

func chatConversationResponses(items []domain.ChatConversationSummary) []dto.ChatConversationResponse {
	out := make([]dto.ChatConversationResponse, 0, len(items))
	for _, s := range items {
		resp := dto.ChatConversationResponse{
			ID:        s.Conversation.ID,
			TicketID:  s.Conversation.TicketID,
			CreatedAt: s.Conversation.CreatedAt,
		}
		if s.LastMessage != nil {
			last := chatMessageResponse(s.LastMessage)
			resp.LastMessage = &last
		}
		out = append(out, resp)
	}
	return out
}
