package user

type UserContainer struct {
	Repo    UserRepository
	Handler *Handler
}

func NewUserContainer(repo UserRepository) *UserContainer {
	return &UserContainer{
		Repo:    repo,
		Handler: NewHandler(repo),
	}
}
