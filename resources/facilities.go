package resources

import (
	"context"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const EngineeringServicePath = "/engineering-service"

type PumpingStation struct {
	ID                int64     `json:"id,omitempty"`
	Name              string    `json:"name" validate:"required,max=100"`
	StationCode       string    `json:"stationCode" validate:"required,max=50"`
	StationType       string    `json:"stationType,omitempty"`
	WaterProject      string    `json:"waterProject,omitempty"`
	WaterCompany      string    `json:"waterCompany,omitempty"`
	Longitude         float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude          float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Address           string    `json:"address,omitempty" validate:"max=200"`
	OperationMode     string    `json:"operationMode,omitempty"`
	UnitCount         int       `json:"unitCount,omitempty" validate:"gte=0"`
	DesignScale       float64   `json:"designScale,omitempty" validate:"gte=0"`
	InstalledCapacity float64   `json:"installedCapacity,omitempty" validate:"gte=0"`
	LiftHead          float64   `json:"liftHead,omitempty" validate:"gte=0"`
	EstablishmentDate *Date     `json:"establishmentDate,omitempty"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

type WaterPlant struct {
	ID                int64     `json:"id,omitempty"`
	PlantCode         string    `json:"plantCode" validate:"required,max=50"`
	Name              string    `json:"name" validate:"required,max=100"`
	WaterProject      string    `json:"waterProject,omitempty"`
	DepartmentID      int64     `json:"departmentId,omitempty"`
	ManagerID         int64     `json:"managerId,omitempty"`
	Address           string    `json:"address,omitempty" validate:"max=200"`
	ManagementUnit    string    `json:"managementUnit,omitempty"`
	Longitude         float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude          float64   `json:"latitude" validate:"gte=-90,lte=90"`
	DesignScale       float64   `json:"designScale,omitempty" validate:"gte=0"`
	SupplyArea        string    `json:"supplyArea,omitempty"`
	SupplyLoadRatio   float64   `json:"supplyLoadRatio,omitempty" validate:"gte=0"`
	SupplyPopulation  int       `json:"supplyPopulation,omitempty" validate:"gte=0"`
	ContactPhone      string    `json:"contactPhone,omitempty"`
	EstablishmentDate *Date     `json:"establishmentDate,omitempty"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

type Reservoir struct {
	ID             int64     `json:"id,omitempty"`
	ReservoirCode  string    `json:"reservoirCode" validate:"required,max=50"`
	Name           string    `json:"name" validate:"required,max=100"`
	ReservoirType  string    `json:"reservoirType,omitempty"`
	Longitude      float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude       float64   `json:"latitude" validate:"gte=-90,lte=90"`
	TotalCapacity  float64   `json:"totalCapacity,omitempty" validate:"gte=0"`
	NormalLevel    float64   `json:"normalLevel,omitempty"`
	FloodLevel     float64   `json:"floodLevel,omitempty"`
	DeadLevel      float64   `json:"deadLevel,omitempty"`
	ManagementUnit string    `json:"managementUnit,omitempty"`
	Remark         string    `json:"remark,omitempty"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

type MonitoringStation struct {
	ID                 int64     `json:"id,omitempty"`
	StationCode        string    `json:"stationCode" validate:"required,max=50"`
	Name               string    `json:"name" validate:"required,max=100"`
	WaterSystemName    string    `json:"waterSystemName,omitempty"`
	RiverName          string    `json:"riverName,omitempty"`
	MonitoringItemCode string    `json:"monitoringItemCode,omitempty"`
	MonitoringType     string    `json:"monitoringType,omitempty"`
	OperationStatus    string    `json:"operationStatus,omitempty"`
	TransmissionMethod string    `json:"transmissionMethod,omitempty"`
	AdminRegionCode    string    `json:"adminRegionCode,omitempty"`
	EstablishmentDate  *Date     `json:"establishmentDate,omitempty"`
	Longitude          float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude           float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Remark             string    `json:"remark,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
}

type Pipeline struct {
	ID                  int64     `json:"id,omitempty"`
	PipelineCode        string    `json:"pipelineCode" validate:"required,max=50"`
	Name                string    `json:"name" validate:"required,max=100"`
	PipelineType        string    `json:"pipelineType,omitempty"`
	PipelineTypeName    string    `json:"pipelineTypeName,omitempty"`
	StartLongitude      float64   `json:"startLongitude" validate:"gte=-180,lte=180"`
	StartLatitude       float64   `json:"startLatitude" validate:"gte=-90,lte=90"`
	EndLongitude        float64   `json:"endLongitude" validate:"gte=-180,lte=180"`
	EndLatitude         float64   `json:"endLatitude" validate:"gte=-90,lte=90"`
	Length              float64   `json:"length,omitempty" validate:"gte=0"`
	Diameter            float64   `json:"diameter,omitempty" validate:"gte=0"`
	Material            string    `json:"material,omitempty"`
	MaterialName        string    `json:"materialName,omitempty"`
	DesignPressure      float64   `json:"designPressure,omitempty" validate:"gte=0"`
	DesignFlow          float64   `json:"designFlow,omitempty" validate:"gte=0"`
	BurialDepth         float64   `json:"burialDepth,omitempty" validate:"gte=0"`
	OperationStatus     string    `json:"operationStatus,omitempty"`
	OperationStatusName string    `json:"operationStatusName,omitempty"`
	ConstructionDate    *Date     `json:"constructionDate,omitempty"`
	Remark              string    `json:"remark,omitempty"`
	CreatedAt           Timestamp `json:"createdAt"`
	UpdatedAt           Timestamp `json:"updatedAt"`
}

type Village struct {
	ID            int64     `json:"id,omitempty"`
	Name          string    `json:"name" validate:"required,max=100"`
	RegionCode    string    `json:"regionCode,omitempty"`
	Population    int       `json:"population,omitempty" validate:"gte=0"`
	Households    int       `json:"households,omitempty" validate:"gte=0"`
	WaterSource   string    `json:"waterSource,omitempty"`
	WaterPlantID  int64     `json:"waterPlantId,omitempty"`
	Longitude     float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude      float64   `json:"latitude" validate:"gte=-90,lte=90"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	Remark        string    `json:"remark,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

type FloatingBoat struct {
	ID              int64     `json:"id,omitempty"`
	Name            string    `json:"name" validate:"required,max=100"`
	BoatCode        string    `json:"boatCode,omitempty" validate:"max=50"`
	ReservoirID     int64     `json:"reservoirId,omitempty"`
	PumpCount       int       `json:"pumpCount,omitempty" validate:"gte=0"`
	Capacity        float64   `json:"capacity,omitempty" validate:"gte=0"`
	Longitude       float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude        float64   `json:"latitude" validate:"gte=-90,lte=90"`
	OperationStatus string    `json:"operationStatus,omitempty"`
	Remark          string    `json:"remark,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

type DisinfectionMaterial struct {
	ID               int64     `json:"id,omitempty"`
	Name             string    `json:"name" validate:"required,max=100"`
	WaterPlantID     int64     `json:"waterPlantId" validate:"required,gt=0"`
	StorageCondition string    `json:"storageCondition,omitempty"`
	ProductionDate   *Date     `json:"productionDate,omitempty"`
	ValidityPeriod   string    `json:"validityPeriod,omitempty"`
	Quantity         float64   `json:"quantity" validate:"gte=0"`
	Unit             string    `json:"unit,omitempty" validate:"max=20"`
	Remark           string    `json:"remark,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

// FacilityType is one entry of the facility type catalogue.
type FacilityType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Facilities groups the engineering service collections. Every collection
// supports batch delete.
type Facilities struct {
	client *apiclient.Client

	PumpingStations       Collection[PumpingStation, PumpingStation]
	WaterPlants           Collection[WaterPlant, WaterPlant]
	Reservoirs            Collection[Reservoir, Reservoir]
	MonitoringStations    Collection[MonitoringStation, MonitoringStation]
	Pipelines             Collection[Pipeline, Pipeline]
	Villages              Collection[Village, Village]
	FloatingBoats         Collection[FloatingBoat, FloatingBoat]
	DisinfectionMaterials Collection[DisinfectionMaterial, DisinfectionMaterial]
}

func newFacilities(client *apiclient.Client) *Facilities {
	return &Facilities{
		client:                client,
		PumpingStations:       newCollection[PumpingStation, PumpingStation](client, EngineeringServicePath+"/pumping-stations"),
		WaterPlants:           newCollection[WaterPlant, WaterPlant](client, EngineeringServicePath+"/water-plants"),
		Reservoirs:            newCollection[Reservoir, Reservoir](client, EngineeringServicePath+"/reservoirs"),
		MonitoringStations:    newCollection[MonitoringStation, MonitoringStation](client, EngineeringServicePath+"/monitoring-stations"),
		Pipelines:             newCollection[Pipeline, Pipeline](client, EngineeringServicePath+"/pipelines"),
		Villages:              newCollection[Village, Village](client, EngineeringServicePath+"/villages"),
		FloatingBoats:         newCollection[FloatingBoat, FloatingBoat](client, EngineeringServicePath+"/floating-boats"),
		DisinfectionMaterials: newCollection[DisinfectionMaterial, DisinfectionMaterial](client, EngineeringServicePath+"/disinfection-materials"),
	}
}

func (f *Facilities) Types(ctx context.Context) ([]FacilityType, error) {
	return sub[[]FacilityType](ctx, f.client, apiclient.Get(EngineeringServicePath+"/facility-types", nil))
}

// TypeMap maps facility type codes to display names.
func (f *Facilities) TypeMap(ctx context.Context) (map[string]string, error) {
	return sub[map[string]string](ctx, f.client, apiclient.Get(EngineeringServicePath+"/facility-type-map", nil))
}

func (f *Facilities) AvailableWaterPlants(ctx context.Context) ([]WaterPlant, error) {
	return sub[[]WaterPlant](ctx, f.client, apiclient.Get(f.WaterPlants.Path()+"/available", nil))
}

func (f *Facilities) AvailableReservoirs(ctx context.Context) ([]Reservoir, error) {
	return sub[[]Reservoir](ctx, f.client, apiclient.Get(f.Reservoirs.Path()+"/available", nil))
}

func (f *Facilities) AvailableMonitoringStations(ctx context.Context) ([]MonitoringStation, error) {
	return sub[[]MonitoringStation](ctx, f.client, apiclient.Get(f.MonitoringStations.Path()+"/available", nil))
}

// AvailablePumpingStations has no dedicated endpoint; it reads the first
// hundred stations from the list.
func (f *Facilities) AvailablePumpingStations(ctx context.Context) ([]PumpingStation, error) {
	page, err := f.PumpingStations.List(ctx, ListQuery{Page: 1, Size: 100})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Facility kinds reported by Names.
const (
	KindPumpingStation = "pumping_station"
	KindWaterPlant     = "water_plant"
	KindReservoir      = "reservoir"
)

type FacilityName struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Names lists the pumping station, water plant and reservoir names for
// selection lists, reading up to a hundred of each.
func (f *Facilities) Names(ctx context.Context) ([]FacilityName, error) {
	q := ListQuery{Size: 100}

	stations, err := f.PumpingStations.List(ctx, q)
	if err != nil {
		return nil, err
	}
	plants, err := f.WaterPlants.List(ctx, q)
	if err != nil {
		return nil, err
	}
	reservoirs, err := f.Reservoirs.List(ctx, q)
	if err != nil {
		return nil, err
	}

	names := make([]FacilityName, 0, len(stations.Items)+len(plants.Items)+len(reservoirs.Items))
	for _, s := range stations.Items {
		names = append(names, FacilityName{Name: s.Name, Kind: KindPumpingStation})
	}
	for _, p := range plants.Items {
		names = append(names, FacilityName{Name: p.Name, Kind: KindWaterPlant})
	}
	for _, r := range reservoirs.Items {
		names = append(names, FacilityName{Name: r.Name, Kind: KindReservoir})
	}
	return names, nil
}
