package partners

type Repo interface {
	Upsert(partner *Partner) error
	Get(clientID string) (*Partner, error)
	List(offset, limit int) ([]*Partner, error)
}
