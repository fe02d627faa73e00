package datalad

// Registration is one recorded RegisterURL call on a Fake.
type Registration struct {
	URL        string
	TargetPath string
}

// Fake is an in-memory Backend for tests. It records every call and can
// inject failures per target path.
type Fake struct {
	Initialized  bool
	Token        string
	Registered   []Registration
	Fetched      []string
	SaveMessages []string

	FailRegister map[string]error
	FailGet      map[string]error
}

// NewFake returns an empty fake backend.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Init() error {
	f.Initialized = true
	return nil
}

func (f *Fake) ConfigureAuth(token string) error {
	f.Token = token
	return nil
}

func (f *Fake) RegisterURL(url, targetPath string) error {
	if err := f.FailRegister[targetPath]; err != nil {
		return &RegistrationError{URL: url, TargetPath: targetPath, Err: err}
	}
	f.Registered = append(f.Registered, Registration{URL: url, TargetPath: targetPath})
	return nil
}

func (f *Fake) Get(targetPath string) error {
	if err := f.FailGet[targetPath]; err != nil {
		return &MaterializationError{TargetPath: targetPath, Err: err}
	}
	f.Fetched = append(f.Fetched, targetPath)
	return nil
}

func (f *Fake) Save(message string) error {
	f.SaveMessages = append(f.SaveMessages, message)
	return nil
}
