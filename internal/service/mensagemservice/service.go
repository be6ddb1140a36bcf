package mensagemservice

import (
	"context"
	"errors"
	"strings"

	"equitrade/internal/domain"
	apperror "equitrade/internal/errors"
	"equitrade/internal/pkg/logger"
)

// MensagemRepository define o contrato de persistência que este serviço espera.
type MensagemRepository interface {
	Create(ctx context.Context, mensagem domain.Mensagem) (domain.Mensagem, error)
	FindByID(ctx context.Context, id string) (domain.Mensagem, error)
	FindBySenderID(ctx context.Context, remetenteID string) ([]domain.Mensagem, error)
	FindByReceiverID(ctx context.Context, destinatarioID string) ([]domain.Mensagem, error)
	FindConversation(ctx context.Context, userA, userB string) ([]domain.Mensagem, error)
	FindConversations(ctx context.Context, userID string) ([]domain.Conversa, error)
	Delete(ctx context.Context, id string) error
}

// UserFinder é o recorte do repositório de usuários usado para resolver
// remetente e destinatário.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// SendInput é o payload de envio de mensagem. O remetente vem do token.
type SendInput struct {
	RemetenteID    string
	DestinatarioID string
	Conteudo       string
}

// MensagemService implementa a lógica de negócio de mensagens.
type MensagemService struct {
	MensagemRepo MensagemRepository
	UserRepo     UserFinder
	logger       logger.Logger
}

// NewService cria uma nova instância do MensagemService.
func NewService(mensagemRepo MensagemRepository, userRepo UserFinder, logger logger.Logger) *MensagemService {
	return &MensagemService{
		MensagemRepo: mensagemRepo,
		UserRepo:     userRepo,
		logger:       logger,
	}
}

// findUser resolve um usuário ou devolve NotFound com a mensagem informada.
func (s *MensagemService) findUser(ctx context.Context, id, notFoundMsg string) (domain.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.User{}, apperror.NewNotFoundError(notFoundMsg)
		}
		return domain.User{}, err
	}
	return user, nil
}

// SendMensagem valida remetente, destinatário e conteúdo e persiste a mensagem.
func (s *MensagemService) SendMensagem(ctx context.Context, input SendInput) (domain.Mensagem, error) {
	if strings.TrimSpace(input.Conteudo) == "" {
		return domain.Mensagem{}, apperror.NewValidationError("Conteúdo da mensagem é obrigatório.")
	}
	if input.DestinatarioID == "" {
		return domain.Mensagem{}, apperror.NewValidationError("Destinatário é obrigatório.")
	}
	if input.RemetenteID == input.DestinatarioID {
		return domain.Mensagem{}, apperror.NewValidationError("Remetente e destinatário devem ser diferentes.")
	}

	remetente, err := s.findUser(ctx, input.RemetenteID, "Remetente não encontrado")
	if err != nil {
		return domain.Mensagem{}, err
	}

	destinatario, err := s.findUser(ctx, input.DestinatarioID, "Destinatário não encontrado")
	if err != nil {
		return domain.Mensagem{}, err
	}

	mensagem := domain.Mensagem{
		Conteudo:     input.Conteudo,
		Remetente:    remetente.Resumo(),
		Destinatario: destinatario.Resumo(),
	}

	return s.MensagemRepo.Create(ctx, mensagem)
}

// GetMensagemByID busca uma mensagem pelo ID.
func (s *MensagemService) GetMensagemByID(ctx context.Context, id string) (domain.Mensagem, error) {
	return s.MensagemRepo.FindByID(ctx, id)
}

// GetSentMensagens lista as mensagens enviadas por um usuário.
func (s *MensagemService) GetSentMensagens(ctx context.Context, userID string) ([]domain.Mensagem, error) {
	if _, err := s.findUser(ctx, userID, "Usuário não encontrado"); err != nil {
		return nil, err
	}
	return s.MensagemRepo.FindBySenderID(ctx, userID)
}

// GetReceivedMensagens lista as mensagens recebidas por um usuário.
func (s *MensagemService) GetReceivedMensagens(ctx context.Context, userID string) ([]domain.Mensagem, error) {
	if _, err := s.findUser(ctx, userID, "Usuário não encontrado"); err != nil {
		return nil, err
	}
	return s.MensagemRepo.FindByReceiverID(ctx, userID)
}

// GetConversation retorna o histórico entre dois usuários em ordem cronológica.
func (s *MensagemService) GetConversation(ctx context.Context, userID, contatoID string) ([]domain.Mensagem, error) {
	if _, err := s.findUser(ctx, userID, "Usuário não encontrado"); err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, contatoID, "Contato não encontrado"); err != nil {
		return nil, err
	}
	return s.MensagemRepo.FindConversation(ctx, userID, contatoID)
}

// GetConversations retorna as conversas do usuário agrupadas por contato,
// cada uma com a última mensagem e o total trocado.
func (s *MensagemService) GetConversations(ctx context.Context, userID string) ([]domain.Conversa, error) {
	if _, err := s.findUser(ctx, userID, "Usuário não encontrado"); err != nil {
		return nil, err
	}
	return s.MensagemRepo.FindConversations(ctx, userID)
}

// DeleteMensagem remove uma mensagem; apenas remetente ou destinatário podem removê-la.
func (s *MensagemService) DeleteMensagem(ctx context.Context, id, callerID string) error {
	mensagem, err := s.MensagemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if mensagem.Remetente.ID != callerID && mensagem.Destinatario.ID != callerID {
		return apperror.NewForbiddenError("Mensagem não pertence ao usuário.")
	}

	return s.MensagemRepo.Delete(ctx, id)
}
