package addcontact

//go:generate mockgen -source=../../clients/contactsapi/client.go -destination=../../clients/contactsapi/mocks/mocks.go -package=mocks Client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"contactsadmin/internal/audit"
	"contactsadmin/internal/clients/contactsapi"
	contactsmocks "contactsadmin/internal/clients/contactsapi/mocks"
	"contactsadmin/internal/clients/prisonersearch"
	prisonermocks "contactsadmin/internal/clients/prisonersearch/mocks"
	"contactsadmin/internal/clients/referencedata"
	refdatamocks "contactsadmin/internal/clients/referencedata/mocks"
	"contactsadmin/internal/journey"
	"contactsadmin/internal/platform/middleware"
	"contactsadmin/internal/session"
	dErrors "contactsadmin/pkg/domain-errors"
	"contactsadmin/pkg/testutil"
)

var errUnavailable = dErrors.New(dErrors.CodeUnavailable, "contacts API unreachable")

const (
	testPrisonerNumber = "A1234BC"
	testSessionID      = "session-1"
	testUsername       = "USER_ONE"
)

type HandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	contacts  *contactsmocks.MockClient
	prisoners *prisonermocks.MockClient
	refData   *refdatamocks.MockClient
	sessions  *session.Manager
	audit     *audit.Publisher
	handler   *Handler
	router    *chi.Mux
	now       time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.contacts = contactsmocks.NewMockClient(s.ctrl)
	s.prisoners = prisonermocks.NewMockClient(s.ctrl)
	s.refData = refdatamocks.NewMockClient(s.ctrl)
	s.sessions = session.NewManager(session.NewMemoryBackend())
	s.audit = audit.NewPublisher(16)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = New(s.sessions, s.contacts, s.prisoners, s.refData, s.audit, nil, logger,
		journey.WithClock[Payload](func() time.Time { return s.now }))

	s.router = chi.NewRouter()
	s.handler.Register(s.router)
}

func (s *HandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, path), testUsername, testSessionID)
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := testutil.WithAuth(testutil.NewFormRequest(s.T(), path, form), testUsername, testSessionID)
	return testutil.DoRequest(s.router, req)
}

// start drives the start endpoint and returns the new journey's id, extracted
// from the redirect target.
func (s *HandlerSuite) start() string {
	rr := s.get(StartURL(testPrisonerNumber))
	s.Require().Equal(http.StatusFound, rr.Code)
	location := rr.Header().Get("Location")
	return location[len(location)-36:]
}

func (s *HandlerSuite) record(journeyID string) *journey.Record[Payload] {
	collection := journey.Collection[Payload]{}
	sess := s.sessions.ForID(testSessionID)
	_, err := sess.Get(context.Background(), Kind, &collection)
	s.Require().NoError(err)
	record, ok := collection[journeyID]
	s.Require().True(ok, "journey %s not in session", journeyID)
	return record
}

func (s *HandlerSuite) TestStart() {
	s.Run("creates a journey and redirects to enter-name", func() {
		journeyID := s.start()
		s.Equal("", s.record(journeyID).Payload.Name.FirstName)
	})

	s.Run("returnUrl seeds the return point", func() {
		rr := s.get(StartURL(testPrisonerNumber) + "?returnUrl=/somewhere")
		s.Require().Equal(http.StatusFound, rr.Code)
		location := rr.Header().Get("Location")
		s.Equal("/somewhere", s.record(location[len(location)-36:]).ReturnPoint)
	})

	s.Run("start emits an audit event carrying the active caseload", func() {
		s.drainAudit()

		req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, StartURL(testPrisonerNumber)), testUsername, testSessionID)
		req = testutil.WithContextValue(req, middleware.ContextKeyCaseload, "LEI")
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusFound, rr.Code)

		event := s.nextAuditEvent()
		s.Equal(audit.ActionStarted, event.Action)
		s.Equal(Kind, event.JourneyKind)
		s.Equal(testUsername, event.Username)
		s.Equal("LEI", event.Caseload)
		s.Equal(testPrisonerNumber, event.Subject)
	})
}

func (s *HandlerSuite) nextAuditEvent() audit.Event {
	select {
	case event := <-s.audit.Inbox():
		return event
	default:
		s.Require().Fail("expected an audit event")
		return audit.Event{}
	}
}

func (s *HandlerSuite) drainAudit() {
	for {
		select {
		case <-s.audit.Inbox():
		default:
			return
		}
	}
}

func (s *HandlerSuite) TestGuardPolicy() {
	s.Run("stale journey id restarts the wizard", func() {
		rr := s.get(StepURL(testPrisonerNumber, StepEnterName, "00000000-0000-0000-0000-000000000000"))
		s.Equal(http.StatusFound, rr.Code)
		s.Equal(StartURL(testPrisonerNumber), rr.Header().Get("Location"))
	})

	s.Run("stale id on POST also restarts", func() {
		rr := s.post(StepURL(testPrisonerNumber, StepEnterName, "00000000-0000-0000-0000-000000000000"), url.Values{})
		s.Equal(http.StatusFound, rr.Code)
		s.Equal(StartURL(testPrisonerNumber), rr.Header().Get("Location"))
	})
}

func (s *HandlerSuite) TestEnterName() {
	s.Run("valid submission stores the name and advances", func() {
		journeyID := s.start()
		rr := s.post(StepURL(testPrisonerNumber, StepEnterName, journeyID), url.Values{
			"firstName": {"John"},
			"lastName":  {"Smith"},
		})

		s.Equal(http.StatusFound, rr.Code)
		s.Equal(StepURL(testPrisonerNumber, StepEnterDOB, journeyID), rr.Header().Get("Location"))
		s.Equal("Smith", s.record(journeyID).Payload.Name.LastName)
	})

	s.Run("invalid submission flashes and redirects back", func() {
		journeyID := s.start()
		stepURL := StepURL(testPrisonerNumber, StepEnterName, journeyID)

		rr := s.post(stepURL, url.Values{"firstName": {"John"}})
		s.Equal(http.StatusFound, rr.Code)
		s.Equal(stepURL, rr.Header().Get("Location"))
		s.Empty(s.record(journeyID).Payload.Name.FirstName, "rejected submission must not touch the payload")

		// The following GET replays the raw values and messages once.
		view := testutil.UnmarshalResponse[struct {
			Form   map[string]string   `json:"form"`
			Errors map[string][]string `json:"errors"`
		}](s.T(), s.get(stepURL))
		s.Equal("John", view.Form["firstName"])
		s.Equal([]string{"is required"}, view.Errors["lastName"])

		again := testutil.UnmarshalResponse[struct {
			Errors map[string][]string `json:"errors"`
		}](s.T(), s.get(stepURL))
		s.Empty(again.Errors)
	})
}

func (s *HandlerSuite) TestRelationshipSteps() {
	submitLinear := func(journeyID string) {
		rr := s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
			"relationshipType": {"S"},
		})
		s.Require().Equal(http.StatusFound, rr.Code)
		s.Require().Equal(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID), rr.Header().Get("Location"))

		s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupSocialRelationship).
			Return([]referencedata.Code{{Code: "MOT", Description: "Mother"}}, nil)
		s.get(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID))

		rr = s.post(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID), url.Values{
			"relationshipToPrisoner": {"MOT"},
		})
		s.Require().Equal(http.StatusFound, rr.Code)
	}

	s.Run("linear flow confirms the pair", func() {
		journeyID := s.start()
		submitLinear(journeyID)

		relationship := s.record(journeyID).Payload.Relationship
		s.Equal("S", relationship.Type)
		s.Equal("MOT", relationship.ToPrisoner)
		s.Empty(relationship.PendingType)
	})

	s.Run("checking answers, unchanged classification returns to review", func() {
		journeyID := s.start()
		submitLinear(journeyID)
		s.enterCheckAnswers(journeyID)

		rr := s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
			"relationshipType": {"S"},
		})
		s.Equal(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID), rr.Header().Get("Location"))
		s.Empty(s.record(journeyID).Payload.Relationship.PendingType)
	})

	s.Run("checking answers, changed classification stages and routes to dependent", func() {
		journeyID := s.start()
		submitLinear(journeyID)
		s.enterCheckAnswers(journeyID)

		rr := s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
			"relationshipType": {"O"},
		})
		s.Equal(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID), rr.Header().Get("Location"))

		relationship := s.record(journeyID).Payload.Relationship
		s.Equal("S", relationship.Type, "confirmed classification must not change yet")
		s.Equal("O", relationship.PendingType)
	})

	s.Run("dependent step offers codes for the pending classification and promotes", func() {
		journeyID := s.start()
		submitLinear(journeyID)
		s.enterCheckAnswers(journeyID)
		s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
			"relationshipType": {"O"},
		})

		s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupOfficialRelationship).
			Return([]referencedata.Code{{Code: "DR", Description: "Doctor"}}, nil)
		s.get(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID))

		rr := s.post(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID), url.Values{
			"relationshipToPrisoner": {"DR"},
		})
		s.Equal(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID), rr.Header().Get("Location"))

		record := s.record(journeyID)
		s.Equal("O", record.Payload.Relationship.Type)
		s.Equal("DR", record.Payload.Relationship.ToPrisoner)
		s.Empty(record.Payload.Relationship.PendingType)
		s.Require().NotNil(record.PreviousAnswers)
		s.Equal("O", record.PreviousAnswers.Relationship.Type, "promotion resets the review snapshot")
	})

	s.Run("abandoning a staged change leaves the confirmed pair intact", func() {
		journeyID := s.start()
		submitLinear(journeyID)
		s.enterCheckAnswers(journeyID)
		s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
			"relationshipType": {"O"},
		})

		rr := s.post(StepURL(testPrisonerNumber, "cancel", journeyID), url.Values{})
		s.Equal(http.StatusFound, rr.Code)

		collection := journey.Collection[Payload]{}
		_, err := s.sessions.ForID(testSessionID).Get(context.Background(), Kind, &collection)
		s.Require().NoError(err)
		s.NotContains(collection, journeyID)
	})
}

// enterCheckAnswers flips the journey into checking-answers mode via the
// review page GET, as the browser flow would.
func (s *HandlerSuite) enterCheckAnswers(journeyID string) {
	s.prisoners.EXPECT().GetPrisoner(gomock.Any(), testPrisonerNumber).
		Return(prisonersearch.Prisoner{PrisonerNumber: testPrisonerNumber, FirstName: "Bob", LastName: "Jones"}, nil)
	s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupTitle).
		Return([]referencedata.Code{{Code: "MR", Description: "Mr"}}, nil)
	s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupSocialRelationship).
		Return([]referencedata.Code{{Code: "MOT", Description: "Mother"}}, nil)
	rr := s.get(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Require().True(s.record(journeyID).IsCheckingAnswers)
}

func (s *HandlerSuite) TestCheckAnswersDescriptions() {
	journeyID := s.start()
	s.post(StepURL(testPrisonerNumber, StepEnterName, journeyID), url.Values{
		"title": {"MR"}, "firstName": {"John"}, "lastName": {"Smith"},
	})
	s.post(StepURL(testPrisonerNumber, StepRelationshipType, journeyID), url.Values{
		"relationshipType": {"S"},
	})
	s.post(StepURL(testPrisonerNumber, StepRelationshipToPrisoner, journeyID), url.Values{
		"relationshipToPrisoner": {"MOT"},
	})

	s.prisoners.EXPECT().GetPrisoner(gomock.Any(), testPrisonerNumber).
		Return(prisonersearch.Prisoner{PrisonerNumber: testPrisonerNumber, FirstName: "Bob", LastName: "Jones"}, nil)
	s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupTitle).
		Return([]referencedata.Code{{Code: "MR", Description: "Mr"}}, nil)
	s.refData.EXPECT().GetGroup(gomock.Any(), referencedata.GroupSocialRelationship).
		Return([]referencedata.Code{{Code: "MOT", Description: "Mother"}}, nil)

	view := testutil.UnmarshalResponse[struct {
		Descriptions map[string]string `json:"descriptions"`
	}](s.T(), s.get(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID)))
	s.Equal("Mr", view.Descriptions["title"])
	s.Equal("Mother", view.Descriptions["relationshipToPrisoner"])
}

func (s *HandlerSuite) TestCompletion() {
	s.Run("posting check-answers persists and deletes the journey", func() {
		journeyID := s.start()
		s.post(StepURL(testPrisonerNumber, StepEnterName, journeyID), url.Values{
			"firstName": {"John"}, "lastName": {"Smith"},
		})

		s.contacts.EXPECT().CreateContact(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req contactsapi.CreateContactRequest) (contactsapi.Contact, error) {
				s.Equal(testPrisonerNumber, req.PrisonerNumber)
				s.Equal("Smith", req.Name.LastName)
				s.Equal(testUsername, req.CreatedBy)
				return contactsapi.Contact{ID: 99}, nil
			})

		rr := s.post(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID), url.Values{})
		s.Equal(http.StatusFound, rr.Code)
		s.Equal("/prisoner/"+testPrisonerNumber+"/contacts/list", rr.Header().Get("Location"))

		collection := journey.Collection[Payload]{}
		_, err := s.sessions.ForID(testSessionID).Get(context.Background(), Kind, &collection)
		s.Require().NoError(err)
		s.NotContains(collection, journeyID, "completion must delete the record")

		started := s.nextAuditEvent()
		s.Equal(audit.ActionStarted, started.Action)
		completed := s.nextAuditEvent()
		s.Equal(audit.ActionCompleted, completed.Action)
		s.Equal(Kind, completed.JourneyKind)
		s.Equal(testUsername, completed.Username)

		banner, err := s.sessions.ForID(testSessionID).PopFlash(context.Background(), journey.BannerFlashKey(Kind))
		s.Require().NoError(err)
		s.Equal("Smith, John has been added as a contact", banner.Get("message"))
	})

	s.Run("downstream failure keeps the journey alive", func() {
		journeyID := s.start()
		s.post(StepURL(testPrisonerNumber, StepEnterName, journeyID), url.Values{
			"firstName": {"John"}, "lastName": {"Smith"},
		})

		s.contacts.EXPECT().CreateContact(gomock.Any(), gomock.Any()).
			Return(contactsapi.Contact{}, errUnavailable)

		rr := s.post(StepURL(testPrisonerNumber, StepCheckAnswers, journeyID), url.Values{})
		s.Equal(http.StatusBadGateway, rr.Code)
		s.NotNil(s.record(journeyID), "failed save must not delete the journey")
	})
}

func (s *HandlerSuite) TestEviction() {
	s.Run("a sixth journey evicts the least recently touched", func() {
		var ids []string
		for range 6 {
			ids = append(ids, s.start())
			s.now = s.now.Add(time.Minute)
		}

		collection := journey.Collection[Payload]{}
		_, err := s.sessions.ForID(testSessionID).Get(context.Background(), Kind, &collection)
		s.Require().NoError(err)
		s.Len(collection, 5)
		s.NotContains(collection, ids[0])
		for _, id := range ids[1:] {
			s.Contains(collection, id)
		}
	})
}
